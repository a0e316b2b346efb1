// Package main implements the rtsegment-demo binary: a small driver
// that constructs one mutable segment, feeds it a synthetic stream of
// rows, and prints periodic progress until it fills up or is
// interrupted. It exercises the library end to end; it is not a
// server and carries no query, ingestion-protocol, or clustering layer.
package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arkilian/rtsegment/internal/config"
	"github.com/arkilian/rtsegment/internal/memory"
	"github.com/arkilian/rtsegment/internal/segment"
	"github.com/arkilian/rtsegment/internal/statshistory"
	"github.com/arkilian/rtsegment/pkg/schema"
)

// demoConfig holds the CLI-tunable knobs for the demo run.
type demoConfig struct {
	SegmentName string
	Capacity    int
	OffHeap     bool
	Aggregate   bool
	StatsDBPath string
	RatePerSec  int
}

func main() {
	cfg := parseFlags()

	log.Printf("starting rtsegment-demo: segment=%s capacity=%d offHeap=%v aggregate=%v",
		cfg.SegmentName, cfg.Capacity, cfg.OffHeap, cfg.Aggregate)

	statsHistory, err := statshistory.Open(cfg.StatsDBPath)
	if err != nil {
		log.Fatalf("open stats history: %v", err)
	}
	defer statsHistory.Close()

	sch := demoSchema()
	segCfg := config.DefaultConfig(cfg.SegmentName)
	segCfg.Capacity = cfg.Capacity
	segCfg.OffHeap = cfg.OffHeap
	segCfg.AggregateMetrics = cfg.Aggregate
	segCfg.MemoryManager = memory.New(cfg.SegmentName, cfg.OffHeap)
	segCfg.StatsHistory = statsHistory
	segCfg.InvertedIndexColumns = map[string]bool{"region": true}
	if cfg.Aggregate {
		segCfg.NoDictionaryColumns = map[string]bool{"clicks": true}
	}

	seg, err := segment.New(segCfg, sch, nil)
	if err != nil {
		log.Fatalf("construct segment: %v", err)
	}
	defer seg.Destroy()
	log.Printf("aggregation enabled: %v", seg.AggregationEnabled())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	ticker := time.NewTicker(time.Second / time.Duration(maxInt(cfg.RatePerSec, 1)))
	defer ticker.Stop()

	progress := time.NewTicker(2 * time.Second)
	defer progress.Stop()

	rng := rand.New(rand.NewSource(1))
	regions := []string{"us-east", "us-west", "eu-central", "ap-south"}

	for {
		select {
		case sig := <-sigCh:
			log.Printf("received signal %v, shutting down", sig)
			return
		case <-progress.C:
			meta := seg.SegmentMetadata()
			log.Printf("progress: docs=%d rowsConsumed=%d rowsIndexed=%d minTime=%d maxTime=%d",
				meta.NumDocsIndexed(), meta.RowsConsumed(), meta.RowsIndexed(), meta.MinTimeMs(), meta.MaxTimeMs())
		case <-ticker.C:
			row := schema.Row{Values: map[string]schema.Value{
				"region": schema.StringValue(regions[rng.Intn(len(regions))]),
				"clicks": schema.Int64Value(int64(rng.Intn(100))),
				"ts":     schema.Int64Value(time.Now().UnixMilli()),
			}}
			canTakeMore, err := seg.Index(row, schema.RowMetadata{IngestionTimeMs: time.Now().UnixMilli()})
			if err != nil {
				log.Printf("index error: %v", err)
				continue
			}
			if !canTakeMore {
				log.Printf("segment %s reached capacity at %d docs, stopping", cfg.SegmentName, seg.NumDocsIndexed())
				return
			}
		}
	}
}

func demoSchema() schema.Schema {
	return schema.Schema{
		TimeColumn: "ts",
		Columns: []schema.Column{
			{Name: "region", Type: schema.String, Kind: schema.Dimension, HasInvertedIdx: true},
			{Name: "clicks", Type: schema.Int64, Kind: schema.Metric},
			{Name: "ts", Type: schema.Int64, Kind: schema.Time},
		},
	}
}

func parseFlags() demoConfig {
	cfg := demoConfig{}
	flag.StringVar(&cfg.SegmentName, "segment-name", config.GenerateSegmentName(), "segment name")
	flag.IntVar(&cfg.Capacity, "capacity", 10000, "maximum number of docs the segment will accept")
	flag.BoolVar(&cfg.OffHeap, "off-heap", false, "back buffers with memory-mapped files instead of heap slices")
	flag.BoolVar(&cfg.Aggregate, "aggregate", true, "enable metric pre-aggregation by dimension key")
	flag.StringVar(&cfg.StatsDBPath, "stats-db", "./rtsegment-stats.db", "path to the stats history SQLite database")
	flag.IntVar(&cfg.RatePerSec, "rate", 200, "synthetic rows indexed per second")
	flag.Parse()
	return cfg
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
