package env

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/firmata.go/pkg/stream/mqtt"
)

func TestConfigLoad(t *testing.T) {
	testCases := []struct {
		name   string
		vars   map[string]string
		expect Config
	}{
		{
			name:   "none",
			expect: Config{StreamURL: "serial://auto", MQTTURL: "mqtt://localhost:1883/firmata/"},
		},
		{
			name: "all",
			vars: map[string]string{
				"FIRMATA_STREAM_URL": "wsl://:8080/firmata",
				"FIRMATA_MQTT_URL":   "mqtt://broker:1883/lab/",
				"FIRMATA_BOARD_ID":   "uno",
			},
			expect: Config{StreamURL: "wsl://:8080/firmata", MQTTURL: "mqtt://broker:1883/lab/", BoardID: "uno"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := Config{StreamURL: "serial://auto", MQTTURL: "mqtt://localhost:1883/firmata/"}
			conf.load(func(key string) string { return tc.vars[key] })
			require.Equal(t, tc.expect, conf)
		})
	}
}

func TestConfigID(t *testing.T) {
	saved := loadBoardID
	defer func() { loadBoardID = saved }()
	loadBoardID = func() string { return "machine" }

	conf := &Config{}
	require.Equal(t, "machine", conf.ID())
	conf = &Config{BoardID: "uno"}
	require.Equal(t, "uno", conf.ID())
}

func TestNewConfigCopies(t *testing.T) {
	conf := NewConfig()
	conf.StreamURL = "ws://changed"
	require.NotEqual(t, conf.StreamURL, Default().StreamURL)
}

func TestConfigQueues(t *testing.T) {
	conf := &Config{BoardID: "uno"}
	_, err := conf.NewQueue()
	require.Error(t, err)
	_, err = conf.NewBoardQueue(mqtt.BoardMeta{})
	require.Error(t, err)

	conf.MQTTURL = "mqtt://localhost:1883/firmata/"
	q, err := conf.NewBoardQueue(mqtt.BoardMeta{Board: "uno32"})
	require.NoError(t, err)
	w, ok := conf.TraceWriter(q).(*mqtt.Publisher)
	require.True(t, ok)
	require.Equal(t, "uno/trace", w.Topic)
}
