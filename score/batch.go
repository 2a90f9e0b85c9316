package score

import (
	"context"

	"github.com/RyanBlaney/sonido-score/logging"
	"golang.org/x/sync/errgroup"
)

// Job is one recording to transcribe
type Job struct {
	Name   string
	Signal Signal
	Beats  []float64
}

// Result pairs a job with its score or its error
type Result struct {
	Name  string `json:"name"`
	Score *Score `json:"score,omitempty"`
	Err   error  `json:"-"`
}

// TranscribeBatch transcribes jobs concurrently, at most Config().Workers at
// a time (unbounded when 0). Results come back in input order. A failing
// job only fails its own Result; the returned error is non-nil only when
// ctx is cancelled, in which case unstarted jobs carry ctx.Err().
func (t *Transcriber) TranscribeBatch(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if t.config.Workers > 0 {
		g.SetLimit(t.config.Workers)
	}

	for i, job := range jobs {
		results[i].Name = job.Name

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return err
			}

			s, err := t.Transcribe(job.Signal, job.Beats)
			if err != nil {
				t.logger.Error(err, "Batch job failed", logging.Fields{"job": job.Name})
				results[i].Err = err
				return nil
			}
			results[i].Score = s
			return nil
		})
	}

	err := g.Wait()
	return results, err
}
