package bus

import (
	"context"
	"errors"
	"log/slog"
)

// LogSink logs every message at debug level.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink logging to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Handle(ctx context.Context, m Message) error {
	s.logger.DebugContext(ctx, "publish", "topic", m.Topic, "msg", m.Payload)
	return nil
}

func (s *LogSink) Close() error { return nil }

// ServoArm is a joint-space arm driven from the joint offsets.
type ServoArm interface {
	Start(ctx context.Context) error
	WriteOffsets(ctx context.Context, offsets []int32) error
	Stop(ctx context.Context) error
	Close() error
}

// ArmSink drives a ServoArm from TopicJointStates. The arm is started on
// the first message so the home pose is captured as late as possible.
type ArmSink struct {
	arm     ServoArm
	started bool
}

// NewArmSink wraps arm.
func NewArmSink(arm ServoArm) *ArmSink {
	return &ArmSink{arm: arm}
}

func (s *ArmSink) Name() string { return "arm" }

func (s *ArmSink) Handle(ctx context.Context, m Message) error {
	joints, ok := m.Payload.(Int32MultiArray)
	if !ok {
		return nil
	}
	if !s.started {
		if err := s.arm.Start(ctx); err != nil {
			return err
		}
		s.started = true
	}
	return s.arm.WriteOffsets(ctx, joints.Data)
}

// Close stops the arm (releasing torque) and closes it.
func (s *ArmSink) Close() error {
	var errs []error
	if s.started {
		if err := s.arm.Stop(context.Background()); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.arm.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
