package production

import (
	"github.com/spinmill/milltrack/internal/production/service"
	"github.com/spinmill/milltrack/internal/production/session"
	"go.uber.org/fx"
)

var Module = fx.Module("production",
	fx.Provide(service.NewService),
	fx.Provide(session.NewMirror),
	fx.Provide(session.NewManager),
)
