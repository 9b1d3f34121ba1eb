package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/pkg/types"
)

func TestModule(t *testing.T) {
	var dialers struct {
		fx.In

		Modern   Dialer `name:"modern"`
		Fallback Dialer `name:"fallback"`
	}

	app := fxtest.New(t,
		fx.Supply(config.NewConfig()),
		Module(),
		fx.Populate(&dialers),
	)
	app.RequireStart().RequireStop()

	require.NotNil(t, dialers.Modern)
	require.NotNil(t, dialers.Fallback)
	assert.Equal(t, types.KindWebTransport, dialers.Modern.Kind())
	assert.Equal(t, types.KindWebSocket, dialers.Fallback.Kind())

	t.Log("✅ Module 提供 modern 与 fallback 拨号器")
}

func TestNewDialers_InvalidConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Client.WebSocket.Scheme = "gopher"

	_, err := NewDialers(cfg)
	assert.Error(t, err)
}
