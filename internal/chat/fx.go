// Package chat wires the chat-with-data interpreter.
package chat

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/spendlens/internal/chat/service"
)

var Module = fx.Module("chat",
	fx.Provide(service.New),
)
