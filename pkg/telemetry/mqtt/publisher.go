package mqtt

import (
	"context"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/imu.go/pkg/framework"
	"github.com/robotalks/imu.go/pkg/telemetry/msgs"
)

// Broker is the part of Queue used by Publisher.
type Broker interface {
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
	Sub(topic string, handler Handler) *Subscription
}

type connector interface {
	Connect() paho.Token
	Close() error
}

// Publisher publishes telemetry messages found in the loop under
// <ID>/<topic> and posts commands received on <ID>/command into the loop.
type Publisher struct {
	Broker Broker
	ID     string

	cmdCh chan *msgs.Command
}

// NewPublisher creates a Publisher.
func NewPublisher(broker Broker, id string) *Publisher {
	return &Publisher{Broker: broker, ID: id, cmdCh: make(chan *msgs.Command, 8)}
}

// AddToLoop implements LoopAdder.
func (p *Publisher) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(fx.NamedRun("mqtt-publisher", p))
	loop.AddController(fx.PrLvPublish, p)
}

func (p *Publisher) topic(name string) string {
	return p.ID + "/" + name
}

// Run implements Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	sub := p.Broker.Sub(p.topic(msgs.TopicCommand), p.receiveCommand)
	defer sub.Close()
	if conn, ok := p.Broker.(connector); ok {
		if token := conn.Connect(); token.WaitTimeout(10*time.Second) && token.Error() != nil {
			glog.Errorf("MQTT connect: %v", token.Error())
		}
		defer conn.Close()
	}
	loopCtl := fx.LoopCtlFrom(ctx)
	for {
		select {
		case <-ctx.Done():
			p.publish(&msgs.Status{State: "Offline"})
			return ctx.Err()
		case cmd := <-p.cmdCh:
			loopCtl.PostMessage(cmd)
			loopCtl.TriggerNext()
		}
	}
}

func (p *Publisher) receiveCommand(topic string, payload []byte) {
	cmd := &msgs.Command{}
	if err := proto.Unmarshal(payload, cmd); err != nil {
		glog.Warningf("decode command on %q: %v", topic, err)
		return
	}
	select {
	case p.cmdCh <- cmd:
	default:
		glog.Warningf("command %q dropped, too many pending", cmd.Action)
	}
}

// Control implements Controller.
func (p *Publisher) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		msg, ok := mc.CurrentMessage().(msgs.Message)
		if !ok {
			return
		}
		if _, isCmd := msg.(*msgs.Command); isCmd {
			return
		}
		mc.MessageTaken()
		p.publish(msg)
	}))
	return nil
}

func (p *Publisher) publish(msg msgs.Message) {
	payload, err := proto.Marshal(msg)
	if err != nil {
		glog.Errorf("encode %s: %v", msg.Topic(), err)
		return
	}
	var qos byte
	var retain bool
	switch msg.(type) {
	case *msgs.Status, *msgs.Calibration:
		qos, retain = 1, true
	case *msgs.Reply:
		qos = 1
	}
	glog.V(3).Infof("PUB %s %s", msg.Topic(), msg)
	p.Broker.PubWith(p.topic(msg.Topic()), payload, qos, retain)
}
