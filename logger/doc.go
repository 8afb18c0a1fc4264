// Package logger builds the zap logger shared by every ACMS component.
//
// Two modes are supported: "production" emits JSON with ISO8601 timestamps,
// "development" emits coloured console output. Both write to stderr only,
// so the stdio transport can use stdout for protocol messages. Every entry
// carries service=acms.
//
//	log, err := logger.New("production", "info")
//	if err != nil {
//	    return err
//	}
//	log.Info("executor ready", zap.Int("max_concurrent", 10))
package logger
