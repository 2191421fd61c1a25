package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/appetiteclub/roms/pkg"
	"github.com/appetiteclub/roms/pkg/event"
	"github.com/aquamarinepk/aqm"
)

// Replay prints the change signals retained by the NATS change log.
func Replay(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")
	limit, err := strconv.Atoi(config.GetStringOrDef("replay.limit", "100"))
	if err != nil || limit <= 0 {
		return fmt.Errorf("invalid replay.limit")
	}

	stream, err := pkg.NewNATSStream(ctx, pkg.DefaultChangeLogConfig(natsURL, event.ChangesTopic))
	if err != nil {
		return fmt.Errorf("open change log: %w", err)
	}
	defer stream.Close()

	msgs, err := stream.Fetch(ctx, limit)
	if err != nil {
		return fmt.Errorf("fetch change log: %w", err)
	}

	for _, msg := range msgs {
		var signal event.Signal
		if err := json.Unmarshal(msg.Data, &signal); err != nil {
			logger.Info("skipping undecodable signal", "sequence", msg.Sequence, "error", err)
			continue
		}
		fmt.Printf("%d\t%s\t%s\t%s\n", msg.Sequence, time.Unix(0, msg.Timestamp).Format(time.RFC3339), signal.Name, signal.OrderID)
	}

	logger.Info("Replay finished", "signals", len(msgs))
	return nil
}
