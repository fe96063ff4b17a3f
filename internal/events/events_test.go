package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/notemarket/internal/events"
)

type failing struct{}

func (failing) Publish(context.Context, string, any) error { return errors.New("broker down") }

func TestEmit(t *testing.T) {
	rec := &events.Recorder{}

	events.Emit(context.Background(), rec, events.SubjectInquiryCreated, map[string]string{"id": "1"})
	events.Emit(context.Background(), failing{}, events.SubjectInquiryCreated, nil)
	events.Emit(context.Background(), nil, events.SubjectInquiryCreated, nil)

	assert.Equal(t, []string{events.SubjectInquiryCreated}, rec.Subjects())
	assert.NoError(t, events.Nop{}.Publish(context.Background(), "x", nil))
}
