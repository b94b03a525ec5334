package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/themanforfree/jwglxt/pkg/timetable"
	"google.golang.org/api/googleapi"
)

const schedulesTable = "schedules"

// ScheduleRow is a calendar row keyed by the year and term it was fetched for.
type ScheduleRow struct {
	Year        int    `bigquery:"year"`
	Term        int    `bigquery:"term"`
	Subject     string `bigquery:"subject"`
	StartDate   string `bigquery:"start_date"`
	EndDate     string `bigquery:"end_date"`
	StartTime   string `bigquery:"start_time"`
	EndTime     string `bigquery:"end_time"`
	AllDay      bool   `bigquery:"all_day"`
	Description string `bigquery:"description"`
	Location    string `bigquery:"location"`
	Private     bool   `bigquery:"private"`
}

type BigQuery struct {
	ctx     context.Context
	client  *bigquery.Client
	dataset *bigquery.Dataset
}

func NewBigQuery(ctx context.Context, projectID, datasetID string) (BigQuery, error) {
	var bq BigQuery

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return bq, fmt.Errorf("failed to create client: %v", err)
	}

	dataset := client.Dataset(datasetID)
	if err := dataset.Create(ctx, nil); err != nil {
		if !isDuplicateError(err) {
			_ = client.Close()
			return bq, fmt.Errorf("failed to create dataset: %v", err)
		}
	}

	bq = BigQuery{ctx, client, dataset}
	return bq, nil
}

// InsertRows merges the rows of one year and term into the schedules table.
// Rows of that term which are no longer in the timetable are deleted.
func (bq BigQuery) InsertRows(year, term int, rows []timetable.CalendarRow) error {
	schema, err := bigquery.InferSchema(ScheduleRow{})
	if err != nil {
		return fmt.Errorf("failed to infer schema: %v", err)
	}

	table := bq.dataset.Table(schedulesTable)
	if err := table.Create(bq.ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		if !isDuplicateError(err) {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}

	// A fresh arrivals table per run, kept afterwards for auditing
	tempName := schedulesTable + "_" + strconv.FormatInt(time.Now().Unix(), 10)
	arrivals := bq.dataset.Table(tempName)
	if err := arrivals.Create(bq.ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		if !isDuplicateError(err) {
			return fmt.Errorf("failed to create arrivals table: %v", err)
		}
	}

	if err := arrivals.Inserter().Put(bq.ctx, scheduleRows(year, term, rows)); err != nil {
		return fmt.Errorf("failed to insert rows: %v", err)
	}

	q := bq.client.Query(mergeQuery(bq.dataset.DatasetID, tempName, year, term))
	job, err := q.Run(bq.ctx)
	if err != nil {
		return fmt.Errorf("failed to execute query: %v", err)
	}
	status, err := job.Wait(bq.ctx)
	if err != nil {
		return fmt.Errorf("failed to wait for query: %v", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("merge failed: %v", err)
	}
	return nil
}

func (bq BigQuery) Close() error {
	return bq.client.Close()
}

// scheduleRows keeps the first row of each merge key; MERGE fails when a
// target row matches more than one source row.
func scheduleRows(year, term int, rows []timetable.CalendarRow) []ScheduleRow {
	type key struct{ subject, date, start, location string }
	seen := make(map[key]bool)
	out := make([]ScheduleRow, 0, len(rows))
	for _, r := range rows {
		k := key{r.Subject, r.StartDate, r.StartTime, r.Location}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, ScheduleRow{
			Year:        year,
			Term:        term,
			Subject:     r.Subject,
			StartDate:   r.StartDate,
			EndDate:     r.EndDate,
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			AllDay:      r.AllDay,
			Description: r.Description,
			Location:    r.Location,
			Private:     r.Private,
		})
	}
	return out
}

func mergeQuery(dataset, arrivals string, year, term int) string {
	return fmt.Sprintf(`
		MERGE %[1]s.%[2]s t
		USING %[1]s.%[3]s s
		ON t.year = s.year
		  AND t.term = s.term
		  AND t.subject = s.subject
		  AND t.start_date = s.start_date
		  AND t.start_time = s.start_time
		  AND t.location = s.location
		WHEN MATCHED THEN
		  UPDATE
		    SET end_date = s.end_date,
		        end_time = s.end_time,
		        description = s.description
		WHEN NOT MATCHED BY SOURCE AND (t.year = %[4]d AND t.term = %[5]d) THEN
		  DELETE
		WHEN NOT MATCHED THEN
		  INSERT ROW`, dataset, schedulesTable, arrivals, year, term)
}

func isDuplicateError(err error) bool {
	var e *googleapi.Error
	if errors.As(err, &e) {
		return e.Code == 409
	}
	return false
}
