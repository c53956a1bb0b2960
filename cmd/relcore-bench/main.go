// Command relcore-bench is a thin demonstration binary wiring the four
// storage-kernel subsystems together: it inserts rows into an SP segment,
// indexes them by a B-tree, and saves a schema catalog over the same
// directory before shutting the buffer manager down. It is not a query engine; the operator pipeline is out of
// scope (spec §1).
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/relcore/relcore/internal/buffer"
	"github.com/relcore/relcore/internal/btree"
	"github.com/relcore/relcore/internal/catalog"
	"github.com/relcore/relcore/internal/config"
	"github.com/relcore/relcore/internal/heap"
	"github.com/relcore/relcore/internal/storage"
)

const (
	heapSegment  int64 = 0
	indexSegment int64 = 1
	catSegment   int64 = 2
)

func main() {
	dataDir := flag.String("data-dir", "data/relcore-bench", "directory holding segment files")
	rows := flag.Int("rows", 300, "number of rows to insert and index")
	flag.Parse()

	cfg := config.Default()
	cfg.Storage.DataDir = *dataDir

	fs := storage.Dir{Path: cfg.Storage.DataDir}
	bm := buffer.NewManager(fs, cfg.Storage.PoolCapacity, 1)

	seg := heap.Open(bm, heapSegment, 0)
	idx, err := btree.Open[int64](bm, indexSegment, btree.Int64Codec{}, 0, 0)
	if err != nil {
		log.Fatalf("open index: %v", err)
	}

	for i := 1; i <= *rows; i++ {
		record := []byte(fmt.Sprintf("row-%d", i))
		tid, err := seg.Insert(record)
		if err != nil {
			log.Fatalf("insert row %d: %v", i, err)
		}
		if err := idx.Insert(int64(i), tid); err != nil {
			log.Fatalf("index row %d: %v", i, err)
		}
	}

	schema := catalog.Schema{
		Relations: []catalog.Relation{
			{
				Name: "bench_rows",
				Columns: []catalog.Column{
					{Name: "label", Type: catalog.TypeVarchar, Width: 64, Attr: catalog.NotNull},
				},
			},
		},
	}
	if err := catalog.Save(bm, catSegment, schema); err != nil {
		log.Fatalf("save catalog: %v", err)
	}

	if err := bm.Shutdown(); err != nil {
		log.Fatalf("shutdown: %v", err)
	}

	slog.Info("relcore-bench done", "rows", *rows, "data_dir", cfg.Storage.DataDir)
}
