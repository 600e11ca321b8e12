package controllers

import (
	"bufio"
	"time"

	"verify-station/broadcaster"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// DefaultHeartbeat keeps intermediary proxies from timing out idle streams.
const DefaultHeartbeat = 30 * time.Second

type EventController struct {
	Events *broadcaster.Broadcaster
}

func NewEventController(events *broadcaster.Broadcaster) *EventController {
	return &EventController{Events: events}
}

// Stream is the live-update SSE endpoint. Each connection registers one
// subscriber; a failed write or flush means the client is gone, which
// unregisters it. Dead clients are therefore detected within one heartbeat.
func (c *EventController) Stream(ctx *fiber.Ctx) error {
	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	heartbeatEvery := DefaultHeartbeat
	if secs := ctx.QueryInt("heartbeat", 0); secs > 0 {
		heartbeatEvery = time.Duration(secs) * time.Second
	}

	id, events := c.Events.Subscribe()

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer c.Events.Unsubscribe(id)

		heartbeat := time.NewTimer(heartbeatEvery)
		defer heartbeat.Stop()

		for {
			select {
			case message, ok := <-events:
				if !ok {
					return
				}
				if _, err := w.WriteString(message); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-heartbeat.C:
				if _, err := w.WriteString(": heartbeat\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
			heartbeat.Reset(heartbeatEvery)
		}
	}))

	return nil
}
