// Package logger provides a small factory over log/slog plus typed
// attribute helpers shared across the backend.
//
// The factory produces JSON logs at info level by default; development
// setups switch to text/debug via WithDevelopment or WithEnvironment.
//
//	log := logger.New(logger.WithEnvironment(cfg.Environment, "finbuddy"))
//	logger.SetAsDefault(log)
//
// Attribute helpers keep log keys consistent:
//
//	log.LogAttrs(ctx, slog.LevelWarn, "channel send failed",
//	    logger.UserID(userID),
//	    logger.Channel("email"),
//	    logger.Error(err),
//	)
package logger
