package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	gojson "github.com/goccy/go-json"
)

// Result is the outcome of one case.
type Result struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Count int    `json:"count"`
	Bytes int64  `json:"bytes"`
	Write Timing `json:"write"`
	Read  Timing `json:"read"`
	Err   string `json:"error,omitempty"`
}

// Report collects the results of a run in case order.
type Report struct {
	StartedAt time.Time `json:"started_at"`
	Results   []Result  `json:"results"`
}

// Run executes the cases in order. A failing case is recorded in the report
// and the remaining cases still run; the returned error joins all failures.
func Run(ctx context.Context, cases ...Case) (Report, error) {
	report := Report{StartedAt: time.Now().UTC()}
	var errs []error

	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := runCase(ctx, c)
		if err != nil {
			res.Err = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
		}
		report.Results = append(report.Results, res)
	}
	return report, errors.Join(errs...)
}

func runCase(ctx context.Context, c Case) (res Result, err error) {
	res = Result{Name: c.Name, Kind: c.Kind, Count: c.Count}

	if c.Cleanup != nil {
		defer func() {
			if cerr := c.Cleanup(ctx); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}

	res.Write, err = Timeit(func() error {
		n, err := c.Write(ctx)
		res.Bytes = n
		return err
	}, c.Count)
	if err != nil {
		return res, err
	}

	res.Read, err = Timeit(func() error { return c.Read(ctx) }, c.Count)
	return res, err
}

// Failed returns the results that recorded an error.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != "" {
			out = append(out, res)
		}
	}
	return out
}

// WriteJSON writes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := gojson.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes the report as an aligned table.
func (r Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CASE\tKIND\tN\tBYTES\tWRITE\tREAD\tSTATUS")
	for _, res := range r.Results {
		status := "ok"
		if res.Err != "" {
			status = res.Err
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			res.Name, res.Kind, res.Count, res.Bytes, res.Write, res.Read, status)
	}
	return tw.Flush()
}
