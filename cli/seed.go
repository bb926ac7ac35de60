package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"authbench.evalgo.org/common"
)

var (
	seedUsers       int
	seedTargets     []string
	seedConcurrency int
	seedTimeout     time.Duration
)

// seedCmd registers a batch of test users against one or more running
// instances, so the session and token servers share the same population
// before a load-test run.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "register test users against running instances",
	Long: `Registers numbered test users ("Test User <i>" with a per-user
password) against every target instance, so both strategy servers start a
comparison run with an identical user population.`,
	Run: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedUsers, "users", 500, "number of users to register")
	seedCmd.Flags().StringSliceVar(&seedTargets, "targets",
		[]string{"http://localhost:3000", "http://localhost:3001"},
		"base URLs of the instances to seed")
	seedCmd.Flags().IntVar(&seedConcurrency, "concurrency", 8, "concurrent workers")
	seedCmd.Flags().DurationVar(&seedTimeout, "timeout", 10*time.Second, "per-request timeout")
}

type seedResult struct {
	registered int
	failed     int
}

func runSeed(cmd *cobra.Command, args []string) {
	client := &http.Client{Timeout: seedTimeout}

	jobs := make(chan int)
	results := make(chan seedResult)

	var wg sync.WaitGroup
	for w := 0; w < seedConcurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results <- seedUser(client, i)
			}
		}()
	}

	go func() {
		for i := 1; i <= seedUsers; i++ {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	var total seedResult
	for r := range results {
		total.registered += r.registered
		total.failed += r.failed
	}

	common.Logger.WithField("registered", total.registered).
		WithField("failed", total.failed).
		Infof("Completed registration attempts for %d users", seedUsers)
}

// seedUser registers one numbered user on every target.
func seedUser(client *http.Client, i int) seedResult {
	username := fmt.Sprintf("Test User %d", i)
	password := fmt.Sprintf("%d@password@123", i)

	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return seedResult{failed: len(seedTargets)}
	}

	var result seedResult
	for _, target := range seedTargets {
		resp, err := client.Post(target+"/register", "application/json", bytes.NewReader(body))
		if err != nil {
			common.Logger.WithField("target", target).
				Errorf("Error registering %s: %v", username, err)
			result.failed++
			continue
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			common.Logger.WithField("target", target).
				WithField("status", resp.StatusCode).
				Errorf("Error registering %s", username)
			result.failed++
			continue
		}

		result.registered++
	}
	return result
}
