package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/spf13/cobra"
	"github.com/themanforfree/jwglxt/pkg/database"
)

const topicID = "schedule-refreshed"

var (
	projectID string
	datasetID string
	dryRun    bool
)

type refreshedMessage struct {
	Year int `json:"year"`
	Term int `json:"term"`
	Rows int `json:"rows"`
}

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Merge the timetable into BigQuery",
	Long: `This command fetches the timetable like the export does, merges the
calendar rows of the year and term into BigQuery, and announces the refresh
on the "schedule-refreshed" Pub/Sub topic.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := calendarRows(cmd)
		if err != nil {
			return err
		}

		if dryRun {
			fmt.Println("Dry run: data will not be inserted")
			fmt.Println("Done!")
			return nil
		}

		ctx := context.Background()
		bq, err := database.NewBigQuery(ctx, projectID, datasetID)
		if err != nil {
			return fmt.Errorf("BigQuery Error: %w", err)
		}
		defer bq.Close()
		if err := bq.InsertRows(opts.year, opts.term, rows); err != nil {
			return fmt.Errorf("BigQuery Error: %w", err)
		}

		if err := publish(ctx, refreshedMessage{opts.year, opts.term, len(rows)}); err != nil {
			return fmt.Errorf("PubSub Error: %w", err)
		}

		fmt.Println("Done!")
		return nil
	},
}

func publish(ctx context.Context, m refreshedMessage) error {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to create client: %v", err)
	}
	defer client.Close()

	msg, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to create message: %v", err)
	}

	topic := client.Topic(topicID)
	defer topic.Stop()
	res := topic.Publish(ctx, &pubsub.Message{Data: msg})
	if _, err := res.Get(ctx); err != nil {
		return fmt.Errorf("failed to publish message: %v", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&projectID, "project", "", "Google Cloud project ID")
	syncCmd.Flags().StringVar(&datasetID, "dataset", "jwglxt", "BigQuery dataset")
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run without modifying the database (default: false)")
	_ = syncCmd.MarkFlagRequired("project")
}
