package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/imu.go/pkg/telemetry/mqtt"
	"github.com/robotalks/imu.go/pkg/telemetry/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/imu/"
	imuID   = "+"
	command string
)

func init() {
	if val := os.Getenv("IMU_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&imuID, "id", imuID, "IMU ID to watch, + for all.")
	flag.StringVar(&command, "cmd", command, "Send a command: calibrate, save, status, reset.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub(imuID+"/#", func(topic string, payload []byte) {
		id, sub := topic, ""
		if pos := strings.Index(topic, "/"); pos >= 0 {
			id, sub = topic[:pos], topic[pos+1:]
		}
		msg, ok := msgs.ForTopic(sub)
		if !ok {
			log.Printf("%s: %d bytes", topic, len(payload))
			return
		}
		if err := proto.Unmarshal(payload, msg); err != nil {
			log.Printf("%s: decode error: %v", topic, err)
			return
		}
		log.Printf("[%s] %s: %s", id, sub, msg.String())
	})
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	defer q.Close()

	if command != "" {
		if imuID == "+" {
			log.Fatalln("-id is required to send a command")
		}
		cmd := &msgs.Command{ID: time.Now().Format("150405.000"), Action: command}
		payload, err := proto.Marshal(cmd)
		if err != nil {
			log.Fatalln(err)
		}
		q.PubWith(imuID+"/"+msgs.TopicCommand, payload, 1, false).Wait()
	}
	<-(chan struct{})(nil)
}
