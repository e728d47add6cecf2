package main

// @title           Hub Report API
// @version         1.0
// @description     Coworking hub membership ledger and monthly cohort reports.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8888
// @BasePath  /

import (
	"go.uber.org/fx"

	"github.com/fatflowers/hubreport/internal/app"
)

func main() {
	// Run blocks until SIGINT/SIGTERM, stops the graph and exits non-zero
	// if start or stop fails.
	fx.New(
		app.Module,
		fx.StartTimeout(app.DefaultStartTimeout),
		fx.StopTimeout(app.DefaultStopTimeout),
	).Run()
}
