package kv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/qpkv/cmd/util"
	"github.com/ValentinKolb/qpkv/lib/key"
	"github.com/ValentinKolb/qpkv/lib/table"
	"github.com/ValentinKolb/qpkv/rpc/client"
	"github.com/ValentinKolb/qpkv/rpc/common"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the table store",
		Long:    "Runs parallel benchmarks against the tweets table. Every worker uses its own connection, since a connection never has more than one request in flight.",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfUserID           uint32 = 4_000_000_000
	perfLargeValueSizeKB        = 100
	perfNumThreads              = 10
	perfKeySpread               = 100
	perfSkip                    = make([]string, 0)

	// perfTimers holds one latency timer per benchmark
	perfTimers = gometrics.NewRegistry()
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. put,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of parallel workers (and connections) per CPU"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the put-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "user"
	perfTestCmd.Flags().Uint32(key, perfUserID, util.WrapString("The user id of the tweet keys written by the benchmark"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfUserID = viper.GetUint32("user")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfKeySpread < 1 {
		return fmt.Errorf("keys must be at least 1")
	}
	return nil
}

// benchmark is a single named benchmark, op is called once per iteration with the worker's client
type benchmark struct {
	name    string
	prepare func(c *client.RPCClient) error
	op      func(c *client.RPCClient, i int) error
}

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for the table store")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	pool := newClientPool()
	defer pool.closeAll()

	// check the connection before starting
	probe, err := pool.acquire()
	if err != nil {
		return err
	}
	pool.release(probe, nil)

	tableID := table.Tweets
	keys := perfKeys()
	value := ksuid.New().String()
	largeValue := strings.Repeat(value, perfLargeValueSizeKB*1024/len(value)+1)[:perfLargeValueSizeKB*1024]

	fill := func(c *client.RPCClient) error {
		for _, k := range keys {
			if err := c.PutItem(tableID, common.Item{Key: k, Value: ksuid.New().String()}); err != nil {
				return err
			}
		}
		return nil
	}

	benchmarks := []benchmark{
		{
			name: "put",
			op: func(c *client.RPCClient, i int) error {
				return c.PutItem(tableID, common.Item{Key: keys[i%len(keys)], Value: ksuid.New().String()})
			},
		},
		{
			name: "put-large",
			op: func(c *client.RPCClient, i int) error {
				return c.PutItem(tableID, common.Item{Key: keys[i%len(keys)], Value: largeValue})
			},
		},
		{
			name:    "get",
			prepare: fill,
			op: func(c *client.RPCClient, i int) error {
				_, err := c.GetItem(tableID, keys[i%len(keys)])
				return err
			},
		},
		{
			name: "get-missing",
			op: func(c *client.RPCClient, i int) error {
				missing := key.TweetKey{UserID: perfUserID + 1, Timestamp: uint32(i)}.Key()
				_, err := c.GetItem(tableID, missing)
				return err
			},
		},
		{
			name:    "scan",
			prepare: fill,
			op: func(c *client.RPCClient, i int) error {
				start := keys[i%len(keys)]
				_, err := c.ScanItem(tableID, &start, i%2 == 1, 10)
				return err
			},
		},
		{
			name:    "mixed",
			prepare: fill,
			op: func(c *client.RPCClient, i int) error {
				k := keys[i%len(keys)]
				switch i % 3 {
				case 0:
					return c.PutItem(tableID, common.Item{Key: k, Value: value})
				case 1:
					_, err := c.GetItem(tableID, k)
					return err
				default:
					_, err := c.ScanItem(tableID, &k, false, 10)
					return err
				}
			},
		},
	}

	fmt.Println("starting tests...")

	// Create results map
	results := make(map[string]testing.BenchmarkResult)

	for _, bm := range benchmarks {
		if shouldSkip(bm.name) {
			results[bm.name] = testing.BenchmarkResult{}
			printResult(bm.name, testing.BenchmarkResult{})
			continue
		}

		if bm.prepare != nil {
			c, err := pool.acquire()
			if err != nil {
				return err
			}
			err = bm.prepare(c)
			pool.release(c, err)
			if err != nil {
				return fmt.Errorf("(%s) - failed to prepare: %w", bm.name, err)
			}
		}

		result := runBenchmark(pool, bm)
		results[bm.name] = result
		printResult(bm.name, result)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	if viper.GetBool("print-metrics") {
		client.WriteMetrics(os.Stderr)
	}

	return nil
}

// runBenchmark runs bm in parallel, every goroutine holds its own client for the whole run
func runBenchmark(pool *clientPool, bm benchmark) testing.BenchmarkResult {
	timer := gometrics.GetOrRegisterTimer(bm.name, perfTimers)

	return testing.Benchmark(func(b *testing.B) {
		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			c, err := pool.acquire()
			if err != nil {
				log.Printf("(%s) - error connecting: %v\n", bm.name, err)
				return
			}

			counter := 0
			for pb.Next() {
				start := time.Now()
				err = bm.op(c, counter)
				timer.UpdateSince(start)
				counter++

				if err != nil {
					log.Printf("(%s) - error: %v\n", bm.name, err)
					if errors.Is(err, common.ErrTransport) {
						break
					}
				}
			}
			pool.release(c, err)
		})
	})
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// clientPool hands out connected clients, a client with a transport error is discarded
type clientPool struct {
	idle chan *client.RPCClient
}

func newClientPool() *clientPool {
	return &clientPool{idle: make(chan *client.RPCClient, 1024)}
}

func (p *clientPool) acquire() (*client.RPCClient, error) {
	select {
	case c := <-p.idle:
		return c, nil
	default:
		return util.NewClient()
	}
}

func (p *clientPool) release(c *client.RPCClient, lastErr error) {
	if errors.Is(lastErr, common.ErrTransport) {
		_ = c.Close()
		return
	}
	select {
	case p.idle <- c:
	default:
		_ = c.Close()
	}
}

func (p *clientPool) closeAll() {
	for {
		select {
		case c := <-p.idle:
			_ = c.Close()
		default:
			return
		}
	}
}

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// perfKeys creates the tweet keys used by the benchmarks
func perfKeys() []key.Key {
	keys := make([]key.Key, perfKeySpread)
	for i := range keys {
		keys[i] = key.TweetKey{UserID: perfUserID, Timestamp: uint32(i)}.Key()
	}
	return keys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	p := latencyPercentiles(test)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p99=%s max=%s\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec, p[0], p[1], p[2])
}

// latencyPercentiles returns p50, p99 and max of the benchmark's timer
func latencyPercentiles(test string) [3]time.Duration {
	timer, ok := perfTimers.Get(test).(gometrics.Timer)
	if !ok {
		return [3]time.Duration{}
	}
	snapshot := timer.Snapshot()
	ps := snapshot.Percentiles([]float64{0.5, 0.99})
	return [3]time.Duration{time.Duration(ps[0]), time.Duration(ps[1]), time.Duration(snapshot.Max())}
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50", "P99", "Max", "Skipped",
		"Endpoint", "TimeoutSec", "Transport",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	tests := make([]string, 0, len(results))
	for test := range results {
		tests = append(tests, test)
	}
	sort.Strings(tests)

	// Write test results
	for _, test := range tests {
		result := results[test]
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		p := latencyPercentiles(test)

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			p[0].String(),
			p[1].String(),
			p[2].String(),
			skipped,
			config.Endpoint,
			strconv.Itoa(config.TimeoutSecond),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
