// Command qcut generates a random Max-Cut instance, reduces it to an Ising
// graph, and evaluates the expectation value of the parameterized circuit.
//
// Every flag can also be set through the environment with a QCUT_ prefix,
// e.g. QCUT_NODES=12 QCUT_PARALLEL=true qcut.
package main

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/entanglab/qcut/maxcut"
	"github.com/entanglab/qcut/tensor"
)

func main() {
	flag.Int("nodes", 8, "node count of the random regular instance")
	flag.Int("degree", 3, "regular degree of the instance")
	flag.Int64("weight-range", 10, "edge weights are drawn uniformly from [1, weight-range]")
	flag.Int64("seed", 0, "RNG seed for instance generation (0 = random)")
	flag.Int("depth", 1, "circuit depth p")
	flag.Float64("gamma", 0.5, "gamma angle, replicated across layers")
	flag.Float64("beta", 0.3, "beta angle, replicated across layers")
	flag.Bool("parallel", false, "distribute element evaluations over a worker pool")
	flag.Int("workers", 0, "worker count for --parallel (0 = CPU count)")
	flag.String("plot", "", "write the expectation history plot to this file")
	flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	viper.SetEnvPrefix("QCUT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		log.Fatal().Err(err).Msg("binding flags")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if viper.GetBool("debug") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	opts := []maxcut.Option{
		maxcut.WithNodes(viper.GetInt("nodes")),
		maxcut.WithDegree(viper.GetInt("degree")),
		maxcut.WithWeightRange(viper.GetInt64("weight-range")),
	}
	if seed := viper.GetInt64("seed"); seed != 0 {
		opts = append(opts, maxcut.WithSeed(seed))
	}

	problem, err := maxcut.New(opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("building max-cut instance")
	}

	graph, err := problem.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("reducing to ising graph")
	}
	log.Info().
		Int("nodes", graph.NumNodes()).
		Int("edges", len(graph.Edges())).
		Msg("ising graph ready")

	depth := viper.GetInt("depth")
	evalOpts := []tensor.Option{tensor.WithDepth(depth)}
	if viper.GetBool("parallel") {
		evalOpts = append(evalOpts, tensor.WithParallel(viper.GetInt("workers")))
	}
	evaluator := tensor.NewEvaluator(graph, evalOpts...)

	params := make([]float64, 2*depth)
	for k := 0; k < depth; k++ {
		params[k] = viper.GetFloat64("gamma")
		params[depth+k] = viper.GetFloat64("beta")
	}

	expectation, err := evaluator.Expectation(context.Background(), params)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluating expectation")
	}
	log.Info().Float64("expectation", expectation).Msg("done")

	if path := viper.GetString("plot"); path != "" {
		if err := evaluator.SavePlot(path); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("writing plot")
		}
		log.Info().Str("path", path).Msg("wrote expectation plot")
	}
}
