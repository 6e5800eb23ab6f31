package builtin

import (
	"context"

	"github.com/howzat/howzat/engine/registry"
	"github.com/howzat/howzat/engine/tool"
)

// RegisterAll registers the builtin tool set at process start. The resolve
// callback supplies per-tool client settings from the app configuration.
func RegisterAll(ctx context.Context, reg *registry.Registry, resolve func(name string) ClientConfig) error {
	tools := []tool.Tool{
		NewLiveScores(resolve(tool.LiveScores)),
		NewCommentary(resolve(tool.Commentary)),
		NewWeather(resolve(tool.Weather)),
		NewKnowledge(resolve(tool.Knowledge)),
		NewBallDB(resolve(tool.BallDB)),
		NewComparison(resolve(tool.Comparison)),
		NewSentiment(resolve(tool.Sentiment)),
		NewVisualization(resolve(tool.Visualization)),
		NewPrediction(resolve(tool.Prediction)),
	}
	for _, t := range tools {
		if err := reg.Register(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
