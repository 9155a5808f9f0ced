package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/firmata.go/pkg/env"
	fx "github.com/robotalks/firmata.go/pkg/framework"
	"github.com/robotalks/firmata.go/pkg/stream/mqtt"
	"github.com/robotalks/firmata.go/pkg/trace"
)

var raw bool

func init() {
	env.SetupFlags()
	flag.BoolVar(&raw, "raw", raw, "Also print byte streams between host and board.")
}

func printf(topic, format string, args ...interface{}) {
	fmt.Printf("%s %s: %s\n", time.Now().Format("15:04:05.000000"), topic, fmt.Sprintf(format, args...))
}

func handleTrace(topic string, payload []byte) {
	ev, err := trace.Decode(payload)
	if err != nil {
		printf(topic, "bad trace: %v", err)
		return
	}
	printf(topic, "%s", ev)
}

func handleMeta(topic string, payload []byte) {
	if len(payload) == 0 {
		printf(topic, "offline")
		return
	}
	printf(topic, "%s", string(payload))
}

func handleRaw(topic string, payload []byte) {
	printf(topic, "% X", payload)
}

func main() {
	flag.Parse()

	conf := env.NewConfig()
	id := conf.BoardID
	if id == "" {
		id = "+"
	}
	q, err := conf.NewQueue()
	if err != nil {
		glog.Exit(err)
	}

	fx.NewRunner().HandleSignals().RunOrFail(fx.NamedRun("monitor", fx.RunFunc(func(ctx context.Context) error {
		if err := q.Connect(ctx); err != nil {
			return err
		}
		defer q.Close()
		subs := []*mqtt.Subscription{
			q.Sub(id+"/trace", handleTrace),
			q.Sub(id+"/meta", handleMeta),
		}
		if raw {
			subs = append(subs, q.Sub(id+"/host", handleRaw), q.Sub(id+"/board", handleRaw))
		}
		for _, sub := range subs {
			if err := mqtt.Wait(ctx, sub.Token); err != nil {
				return err
			}
			defer sub.Close()
		}
		glog.Infof("monitoring %s", strings.TrimSuffix(q.TopicPrefix+id, "/"))
		<-ctx.Done()
		return ctx.Err()
	})))
}
