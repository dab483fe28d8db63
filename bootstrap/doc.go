// Package bootstrap runs the service lifecycle: typed config, logger setup,
// component start in registration order, configure callbacks, ready check,
// startup summary, signal handling and reverse-order shutdown.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(storageComponent)
//	app.RegisterComponent(engine)
//	app.RegisterComponent(server.NewComponent(srv))
//	err = app.Run(ctx)
//
// RunTask uses the same lifecycle for finite work such as the one-shot
// transcribe command.
package bootstrap
