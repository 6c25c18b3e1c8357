//go:build wireinject
// +build wireinject

package main

import (
	"fx-data/internal/app"
	"fx-data/internal/histdata"
	"fx-data/internal/saver"

	"github.com/google/wire"
)

// App holds application dependencies built by Wire.
type App struct {
	Config    *app.Config
	Converter *histdata.Converter
	Saver     saver.BarSaver
}

// InitializeApp builds App (Config + Converter + BarSaver) via Wire.
func InitializeApp(path app.ConfigPath) (*App, error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvideSource,
		app.ProvideTimeframes,
		app.ProvideCache,
		histdata.NewConverter,
		app.ProvideBarSaver,
		wire.Struct(new(App), "Config", "Converter", "Saver"),
	)
	return nil, nil
}
