package reminder

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnsupported means the channel cannot work in this environment.
	ErrUnsupported = errors.New("alert channel unsupported")
	// ErrPermissionDenied means the user did not allow the channel.
	ErrPermissionDenied = errors.New("alert channel not permitted")
)

type Alert struct {
	TaskID int64
	Text   string
	Time   string
}

// Channel is one way of showing an alert to the user.
type Channel interface {
	Name() string
	Notify(ctx context.Context, a Alert) error
}

// ClientDisplayError is returned when no channel could show an alert.
type ClientDisplayError struct {
	Err error
}

func (e *ClientDisplayError) Error() string {
	return fmt.Sprintf("no alert channel succeeded: %v", e.Err)
}

func (e *ClientDisplayError) Unwrap() error {
	return e.Err
}

// Chain tries its channels in order until one succeeds.
type Chain struct {
	Channels []Channel
}

func NewChain(channels ...Channel) *Chain {
	return &Chain{Channels: channels}
}

// Notify returns the name of the channel that showed the alert.
func (c *Chain) Notify(ctx context.Context, a Alert) (string, error) {
	var errs []error
	for _, ch := range c.Channels {
		if err := ch.Notify(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		return ch.Name(), nil
	}
	if len(errs) == 0 {
		errs = append(errs, ErrUnsupported)
	}
	return "", &ClientDisplayError{Err: errors.Join(errs...)}
}
