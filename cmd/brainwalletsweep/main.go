/*
Command brainwalletsweep drives a passphrase wordlist through the
Brainwallet/Profanity reconstruction path (vulnclass.PRNGNone) and reports
every passphrase whose derived address matches the configured target
database.

A dedicated match-writer goroutine decouples file I/O from the hot
derivation path, with atomic batched counters and a periodic stats
reporter. Passphrase candidates run through pkg/scanner's injected
TargetOracle (a SQLite-backed targetdb.Store), covering all three address
families a brainwallet could have used.

Usage:

	./brainwalletsweep <threads> <output-file.txt> <wordlist.txt> <target.sqlite>
*/
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wallet-forensics/core/internal/logging"
	"github.com/wallet-forensics/core/internal/scan"
	"github.com/wallet-forensics/core/internal/targetdb"
	"github.com/wallet-forensics/core/internal/vulnclass"
	"github.com/wallet-forensics/core/pkg/scanner"
)

// readWordlist loads candidate passphrases from a file, one per line.
func readWordlist(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			words = append(words, line)
		}
	}
	return words, scanner.Err()
}

// matchWriter persists confirmed ScanHits to outputFile as they arrive,
// keeping disk I/O off the scan orchestrator's hot path.
func matchWriter(hits <-chan scan.ScanHit, outputFile string, wg *sync.WaitGroup) {
	defer wg.Done()

	file, err := os.OpenFile(outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("failed to open output file: %s", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	for hit := range hits {
		line := fmt.Sprintf("%s:%s:%s:%s\n", hit.Parameter.Passphrase, hit.PrivateKeyHex, hit.Hash160Hex, hit.Address)
		if _, err := writer.WriteString(line); err != nil {
			log.Printf("failed to write hit to file: %s", err)
			continue
		}
		writer.Flush()
		fmt.Printf("MATCH: passphrase=%q hash160=%s address=%s\n", hit.Parameter.Passphrase, hit.Hash160Hex, hit.Address)
	}
}

// statsReporter prints overall and instantaneous candidate throughput
// every 10 seconds.
func statsReporter(counter *uint64, startTime time.Time, done <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	lastTotal := uint64(0)
	lastTime := startTime
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			total := atomic.LoadUint64(counter)
			elapsed := time.Since(startTime).Seconds()
			overallRate := float64(total) / elapsed
			instantRate := float64(total-lastTotal) / now.Sub(lastTime).Seconds()
			fmt.Printf("[stats] checked=%d overall=%.0f/s instant=%.0f/s runtime=%.0fs\n",
				total, overallRate, instantRate, elapsed)
			lastTotal = total
			lastTime = now
		}
	}
}

// countingProgressSink adapts scan.ProgressSink into the atomic counter
// the stats reporter reads.
type countingProgressSink struct {
	counter *uint64
}

func (c countingProgressSink) Report(u scan.ProgressUpdate) {
	atomic.StoreUint64(c.counter, u.ParametersProcessed)
}

func main() {
	if len(os.Args) != 5 {
		fmt.Println("Usage: ./brainwalletsweep <threads> <output-file.txt> <wordlist.txt> <target.sqlite>")
		os.Exit(1)
	}

	numThreads, err := strconv.Atoi(os.Args[1])
	if err != nil || numThreads < 1 {
		log.Fatalf("invalid thread count: %s", os.Args[1])
	}
	runtime.GOMAXPROCS(runtime.NumCPU())

	outputFile := os.Args[2]
	wordlistFile := os.Args[3]
	dbPath := os.Args[4]

	fmt.Printf("Loading wordlist from %s...\n", wordlistFile)
	passphrases, err := readWordlist(wordlistFile)
	if err != nil {
		log.Fatalf("failed to read wordlist: %s", err)
	}
	fmt.Printf("Loaded %d candidate passphrases\n", len(passphrases))

	ctx := context.Background()
	store, err := targetdb.Open(ctx, dbPath)
	if err != nil {
		log.Fatalf("failed to open target database: %s", err)
	}
	defer store.Close()

	logger, err := logging.New()
	if err != nil {
		log.Fatalf("failed to construct logger: %s", err)
	}
	defer logger.Sync()

	orch := scanner.New(store, scanner.WithLogger(logger), scanner.WithBatchSize(uint64(numThreads)*256))

	var counter uint64
	done := make(chan struct{})
	startTime := time.Now()
	go statsReporter(&counter, startTime, done)

	var writerWg sync.WaitGroup
	hits, errs := orch.RunScan(ctx, scanner.ScanRequest{
		Class:       vulnclass.Brainwallet,
		AddressMask: scan.AllAddressTypes,
		Passphrases: passphrases,
		Progress:    countingProgressSink{counter: &counter},
	})

	writerWg.Add(1)
	go matchWriter(hits, outputFile, &writerWg)

	writerWg.Wait()
	close(done)

	if err := <-errs; err != nil {
		log.Fatalf("scan aborted: %s", err)
	}
	fmt.Println("sweep complete")
}
