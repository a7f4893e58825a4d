package main

import (
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 20
	testDuration = 10 * time.Second
)

var sensors = []string{"Hornet", "Wasp", "Bumblebee", "Cricket"}

var httpClient = &http.Client{
	Timeout: 10 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	fmt.Println("=== SensorDigest Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Sensors: %d\n\n", numWorkers, testDuration, len(sensors))

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Every ingest rewrites the workbook, so throughput is bounded by disk.
	fmt.Println("\n--- Phase 1: Sensor ingest (GET /exec) ---")
	runPhase(testDuration, doExec)

	fmt.Println("\n--- Phase 2: Mixed load (60% ingest, 30% preview, 10% health) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.60:
			return doExec(rng)
		case r < 0.90:
			return doPreview()
		default:
			return doHealth()
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-16s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 82))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-16s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 82))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(max(totalOps, 1))*100, rps)
}

func reading(rng *rand.Rand, low, spread float64) [3]string {
	lo := low + rng.Float64()*spread
	mid := lo + rng.Float64()*spread
	hi := mid + rng.Float64()*spread
	return [3]string{
		strconv.FormatFloat(lo, 'f', 1, 64),
		strconv.FormatFloat(mid, 'f', 1, 64),
		strconv.FormatFloat(hi, 'f', 1, 64),
	}
}

func doExec(rng *rand.Rand) result {
	temps := reading(rng, 10, 8)
	humids := reading(rng, 35, 10)
	q := url.Values{
		"name":         {sensors[rng.Intn(len(sensors))]},
		"date":         {time.Now().Format("2006-01-02 15:04:05")},
		"badValues":    {strconv.Itoa(rng.Intn(3))},
		"minTemp":      {temps[0]},
		"meanTemp":     {temps[1]},
		"maxTemp":      {temps[2]},
		"minHumidity":  {humids[0]},
		"meanHumidity": {humids[1]},
		"maxHumidity":  {humids[2]},
	}

	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/exec?" + q.Encode())
	lat := time.Since(start)
	if err != nil {
		return result{"GET /exec", 0, lat, true}
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	failed := resp.StatusCode != http.StatusOK || strings.HasPrefix(string(body), "oops....")
	return result{"GET /exec", resp.StatusCode, lat, failed}
}

func doPreview() result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/preview?email=" + url.QueryEscape("loadtest@example.org"))
	lat := time.Since(start)
	if err != nil {
		return result{"GET /preview", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	// An unknown subscriber answers 404, which still exercises the digest path.
	ok := resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNotFound
	return result{"GET /preview", resp.StatusCode, lat, !ok}
}

func doHealth() result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/health")
	lat := time.Since(start)
	if err != nil {
		return result{"GET /health", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /health", resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
