// Package bench times round trips of sequences through the codecs in
// package seq, the baseline codecs in package codec and a seqbench.Store.
//
// A Case bundles a write leg and a read leg. The read leg decodes what the
// write leg produced and compares it with the input; any difference fails
// the case with a *MismatchError listing the positions that differ.
//
//	report, err := bench.Run(ctx,
//	    bench.FixedCase("uint64/iota", testutil.Iota[uint64](1000)),
//	    bench.StringsCase("strings/reference", []string{"abc", "xyz012"}),
//	)
//	_ = report.WriteText(os.Stdout)
package bench
