// Command jobflowdemo wires a Queue to a local MySQL database, publishes a
// few jobs, and processes them with a single subscriber.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/outpost-run/jobflow"
)

func main() {
	dsn := "root:password@tcp(127.0.0.1:3306)/jobflow_demo?charset=utf8mb4&parseTime=True"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	queue, err := jobflow.New(jobflow.Config{
		Executor: jobflow.NewMySQLExecutor(db),
		Schema:   "jobflow_demo",
	})
	if err != nil {
		log.Fatalf("new queue: %v", err)
	}

	queue.OnError(func(err error) { log.Printf("jobflow error: %v", err) })
	queue.OnExpired(func(n int) { log.Printf("jobflow: reclaimed %d expired jobs", n) })

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := queue.Monitor(ctx); err != nil {
		log.Fatalf("monitor: %v", err)
	}

	err = queue.Subscribe(ctx, "welcome-email", func(ctx context.Context, job jobflow.Job, handle *jobflow.JobHandle) error {
		fmt.Printf("sending welcome email for job %s: %s\n", job.ID, job.Data)
		return handle.Complete(ctx)
	}, jobflow.WithTeamSize(3))
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	for i := 0; i < 3; i++ {
		id, err := queue.Publish(ctx, "welcome-email",
			map[string]string{"to": fmt.Sprintf("user-%d@example.com", i)},
			jobflow.WithSingletonKey(fmt.Sprintf("user-%d", i)),
			jobflow.WithSingletonMinutes(1),
		)
		if err != nil {
			log.Printf("publish: %v", err)
			continue
		}
		log.Printf("published job %s", id)
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := queue.Stop(shutdownCtx); err != nil {
		log.Printf("stop: %v", err)
	}
}
