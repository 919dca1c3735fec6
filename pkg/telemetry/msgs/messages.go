// Package msgs defines the telemetry messages published by the IMU service.
// Messages are protobuf encoded and flow through the control loop as
// framework messages.
package msgs

import (
	"strings"

	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/imu.go/pkg/framework"
)

// Message is a telemetry message published under its own topic.
type Message interface {
	fx.Message
	proto.Message
	// Topic is relative to the IMU's topic prefix.
	Topic() string
}

// Topics.
const (
	TopicOrientation = "orientation"
	TopicVector      = "vector"
	TopicCalibration = "calibration"
	TopicStatus      = "status"
	TopicCommand     = "command"
	TopicReply       = "reply"
)

// Orientation is the filtered rotation vector in w, x, y, z order.
type Orientation struct {
	W        float64 `protobuf:"fixed64,1,opt,name=w,proto3" json:"w"`
	X        float64 `protobuf:"fixed64,2,opt,name=x,proto3" json:"x"`
	Y        float64 `protobuf:"fixed64,3,opt,name=y,proto3" json:"y"`
	Z        float64 `protobuf:"fixed64,4,opt,name=z,proto3" json:"z"`
	Accuracy uint32  `protobuf:"varint,5,opt,name=accuracy,proto3" json:"accuracy,omitempty"`
	// Stale is set when the value is the last known one after a failure.
	Stale bool `protobuf:"varint,6,opt,name=stale,proto3" json:"stale,omitempty"`
	// Timestamp is in unix nanoseconds.
	Timestamp int64 `protobuf:"varint,7,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

// NewMessage implements Message.
func (m *Orientation) NewMessage() fx.Message { return &Orientation{} }

// Topic implements Message.
func (m *Orientation) Topic() string { return TopicOrientation }

// ProtoMessage implements proto.Message.
func (m *Orientation) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Orientation) Reset() { *m = Orientation{} }

// String implements proto.Message.
func (m *Orientation) String() string { return proto.CompactTextString(m) }

// Vector is a three axis reading, e.g. acceleration.
type Vector struct {
	Report   string  `protobuf:"bytes,1,opt,name=report,proto3" json:"report"`
	X        float64 `protobuf:"fixed64,2,opt,name=x,proto3" json:"x"`
	Y        float64 `protobuf:"fixed64,3,opt,name=y,proto3" json:"y"`
	Z        float64 `protobuf:"fixed64,4,opt,name=z,proto3" json:"z"`
	Accuracy uint32  `protobuf:"varint,5,opt,name=accuracy,proto3" json:"accuracy,omitempty"`
}

// NewMessage implements Message.
func (m *Vector) NewMessage() fx.Message { return &Vector{} }

// Topic implements Message.
func (m *Vector) Topic() string { return TopicVector + "/" + m.Report }

// ProtoMessage implements proto.Message.
func (m *Vector) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Vector) Reset() { *m = Vector{} }

// String implements proto.Message.
func (m *Vector) String() string { return proto.CompactTextString(m) }

// Calibration reports the calibration state.
type Calibration struct {
	MagAccuracy uint32 `protobuf:"varint,1,opt,name=mag_accuracy,proto3" json:"mag_accuracy"`
	Accel       bool   `protobuf:"varint,2,opt,name=accel,proto3" json:"accel,omitempty"`
	Gyro        bool   `protobuf:"varint,3,opt,name=gyro,proto3" json:"gyro,omitempty"`
	Mag         bool   `protobuf:"varint,4,opt,name=mag,proto3" json:"mag,omitempty"`
	// SavedAt is in unix nanoseconds, zero if never saved.
	SavedAt int64 `protobuf:"varint,5,opt,name=saved_at,proto3" json:"saved_at,omitempty"`
}

// NewMessage implements Message.
func (m *Calibration) NewMessage() fx.Message { return &Calibration{} }

// Topic implements Message.
func (m *Calibration) Topic() string { return TopicCalibration }

// ProtoMessage implements proto.Message.
func (m *Calibration) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Calibration) Reset() { *m = Calibration{} }

// String implements proto.Message.
func (m *Calibration) String() string { return proto.CompactTextString(m) }

// Status is the health of the IMU service.
type Status struct {
	State     string `protobuf:"bytes,1,opt,name=state,proto3" json:"state"`
	ProductID string `protobuf:"bytes,2,opt,name=product_id,proto3" json:"product_id,omitempty"`
	Resets    uint32 `protobuf:"varint,3,opt,name=resets,proto3" json:"resets,omitempty"`
	Error     string `protobuf:"bytes,4,opt,name=error,proto3" json:"error,omitempty"`
}

// NewMessage implements Message.
func (m *Status) NewMessage() fx.Message { return &Status{} }

// Topic implements Message.
func (m *Status) Topic() string { return TopicStatus }

// ProtoMessage implements proto.Message.
func (m *Status) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Status) Reset() { *m = Status{} }

// String implements proto.Message.
func (m *Status) String() string { return proto.CompactTextString(m) }

// Command actions.
const (
	ActionCalibrate = "calibrate"
	ActionSave      = "save"
	ActionStatus    = "status"
	ActionReset     = "reset"
)

// Command is received from remote.
type Command struct {
	ID     string `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Action string `protobuf:"bytes,2,opt,name=action,proto3" json:"action"`
}

// NewMessage implements Message.
func (m *Command) NewMessage() fx.Message { return &Command{} }

// Topic implements Message.
func (m *Command) Topic() string { return TopicCommand }

// ProtoMessage implements proto.Message.
func (m *Command) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Command) Reset() { *m = Command{} }

// String implements proto.Message.
func (m *Command) String() string { return proto.CompactTextString(m) }

// Reply is the result of a Command.
type Reply struct {
	ID    string `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Error string `protobuf:"bytes,2,opt,name=error,proto3" json:"error,omitempty"`
}

// NewReply creates a Reply for cmd.
func NewReply(cmd *Command, err error) *Reply {
	r := &Reply{ID: cmd.ID}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// NewMessage implements Message.
func (m *Reply) NewMessage() fx.Message { return &Reply{} }

// Topic implements Message.
func (m *Reply) Topic() string { return TopicReply }

// ProtoMessage implements proto.Message.
func (m *Reply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Reply) Reset() { *m = Reply{} }

// String implements proto.Message.
func (m *Reply) String() string { return proto.CompactTextString(m) }

// ForTopic creates an empty message for a topic relative to the IMU.
func ForTopic(topic string) (Message, bool) {
	switch {
	case topic == TopicOrientation:
		return &Orientation{}, true
	case strings.HasPrefix(topic, TopicVector+"/"):
		return &Vector{}, true
	case topic == TopicCalibration:
		return &Calibration{}, true
	case topic == TopicStatus:
		return &Status{}, true
	case topic == TopicCommand:
		return &Command{}, true
	case topic == TopicReply:
		return &Reply{}, true
	}
	return nil, false
}
