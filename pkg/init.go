package pkg

import (
	"github.com/scdlbot/scdl/pkg/handlers"
	"github.com/scdlbot/scdl/pkg/workers"

	tg "github.com/amarnathcjd/gogram/telegram"
)

func Init(client *tg.Client) error {
	handlers.LoadModules(client)
	workers.StartConsumer(client)
	workers.StartSweepers()
	return nil
}
