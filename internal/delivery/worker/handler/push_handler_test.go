package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	deliverycontext "storehub/internal/delivery/context"
	"storehub/internal/domain/constants"
	"storehub/internal/domain/entity"
	"storehub/internal/infra/pubsub"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingListener struct {
	events     []*entity.OrderCreatedEvent
	requestIDs []string
	err        error
}

func (l *capturingListener) HandleOrderCreated(ctx context.Context, event *entity.OrderCreatedEvent) error {
	l.events = append(l.events, event)
	l.requestIDs = append(l.requestIDs, deliverycontext.GetRequestIDFromContext(ctx))

	return l.err
}

func newTestPushHandler(listener *capturingListener) *PushHandler {
	return &PushHandler{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		listener: listener,
		verify:   verifyPubSubToken,
	}
}

func pushBody(t *testing.T, event *entity.OrderCreatedEvent, attributes map[string]string) []byte {
	t.Helper()

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var msg pubsub.PushMessage
	msg.Subscription = "projects/test/subscriptions/order-created-sub"
	msg.Message.Data = base64.StdEncoding.EncodeToString(data)
	msg.Message.MessageID = event.EventID.String()
	msg.Message.Attributes = attributes

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	return body
}

func servePush(h *PushHandler, body []byte) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/push", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	_ = h.HandlePush(e.NewContext(req, rec))

	return rec
}

func sampleEvent() *entity.OrderCreatedEvent {
	return &entity.OrderCreatedEvent{
		EventID:   uuid.New(),
		RequestID: "req-payload",
		Order: entity.Order{
			ID:          uuid.New(),
			StoreID:     uuid.New(),
			OrderNumber: "1001",
			TotalAmount: 5900,
			Currency:    "SAR",
		},
	}
}

func TestHandlePush_QueuesOrderEvent(t *testing.T) {
	listener := &capturingListener{}
	event := sampleEvent()

	rec := servePush(newTestPushHandler(listener), pushBody(t, event, map[string]string{
		constants.AttrEventType: constants.EventTypeOrderCreated,
		constants.AttrRequestID: "req-attr",
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, listener.events, 1)
	assert.Equal(t, event.Order.ID, listener.events[0].Order.ID)
	assert.Equal(t, int64(5900), listener.events[0].Order.TotalAmount)
	assert.Equal(t, "req-attr", listener.events[0].RequestID)
	assert.Equal(t, []string{"req-attr"}, listener.requestIDs)
}

func TestHandlePush_FallsBackToPayloadRequestID(t *testing.T) {
	listener := &capturingListener{}

	rec := servePush(newTestPushHandler(listener), pushBody(t, sampleEvent(), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"req-payload"}, listener.requestIDs)
}

func TestHandlePush_EnqueueFailureAsksForRedelivery(t *testing.T) {
	listener := &capturingListener{err: errors.New("redis down")}

	rec := servePush(newTestPushHandler(listener), pushBody(t, sampleEvent(), nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandlePush_RejectsMalformedPayloads(t *testing.T) {
	withoutOrder := sampleEvent()
	withoutOrder.Order.ID = uuid.Nil

	var notBase64 pubsub.PushMessage
	notBase64.Message.Data = "%%%"
	notBase64Body, err := json.Marshal(notBase64)
	require.NoError(t, err)

	var notJSON pubsub.PushMessage
	notJSON.Message.Data = base64.StdEncoding.EncodeToString([]byte("not json"))
	notJSONBody, err := json.Marshal(notJSON)
	require.NoError(t, err)

	tests := []struct {
		name string
		body []byte
	}{
		{name: "invalid envelope", body: []byte("{")},
		{name: "data not base64", body: notBase64Body},
		{name: "data not json", body: notJSONBody},
		{name: "event without order", body: pushBody(t, withoutOrder, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listener := &capturingListener{}

			rec := servePush(newTestPushHandler(listener), tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, listener.events)
		})
	}
}

func TestHandlePush_IgnoresOtherEventTypes(t *testing.T) {
	listener := &capturingListener{}

	rec := servePush(newTestPushHandler(listener), pushBody(t, sampleEvent(), map[string]string{
		constants.AttrEventType: "store.deleted",
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, listener.events)
}

func TestHandlePush_VerifiesTokenWhenRequired(t *testing.T) {
	listener := &capturingListener{}
	h := newTestPushHandler(listener)
	h.verifyPushAuth = true

	rec := servePush(h, pushBody(t, sampleEvent(), nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, listener.events)

	h.verify = func(*http.Request) error { return nil }
	rec = servePush(h, pushBody(t, sampleEvent(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, listener.events, 1)
}
