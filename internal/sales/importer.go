// Package sales turns archived auction mails into sale records and
// aggregates them for the analytics endpoints.
package sales

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/galaxytools/craft-tracker/internal/mailstore"
	"github.com/galaxytools/craft-tracker/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Mail exports are JSON lines, one mail per line.
type mail struct {
	ID      string    `json:"id"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`
}

var saleBodyRegex = regexp.MustCompile(`Your auction of (.+) has been sold to (.+) for (\d+) credits`)

type Importer struct {
	db    *gorm.DB
	store mailstore.Store
	log   *logrus.Entry
}

// ImportReport summarizes one export pass. Skipped counts non-sale or
// malformed mails; Duplicates counts mails already imported earlier.
type ImportReport struct {
	Processed  int `json:"processed"`
	Imported   int `json:"imported"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`
}

func NewImporter(logger *logrus.Logger, db *gorm.DB, store mailstore.Store) *Importer {
	return &Importer{
		db:    db,
		store: store,
		log:   logger.WithField("component", "sales_importer"),
	}
}

// Import fetches one mail export object and writes a sale record per
// auction-sale mail found in it. A malformed line never aborts the batch.
// Re-importing the same export is a no-op thanks to the mail id unique
// index.
func (i *Importer) Import(ctx context.Context, objectKey string) (ImportReport, error) {
	data, err := i.store.Fetch(ctx, objectKey)
	if err != nil {
		return ImportReport{}, err
	}

	var report ImportReport
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		report.Processed++

		var m mail
		if err := json.Unmarshal(line, &m); err != nil {
			i.log.WithError(err).Warn("Skipping unparseable mail line")
			report.Skipped++
			continue
		}

		record, ok := parseSaleMail(m)
		if !ok {
			report.Skipped++
			continue
		}

		result := i.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "mail_id"}},
				DoNothing: true,
			}).
			Create(record)
		if result.Error != nil {
			return report, fmt.Errorf("saving sale record for mail %q: %w", m.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			report.Duplicates++
		} else {
			report.Imported++
		}
	}
	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("reading mail export %q: %w", objectKey, err)
	}

	i.log.WithFields(logrus.Fields{
		"object":   objectKey,
		"imported": report.Imported,
		"skipped":  report.Skipped,
	}).Info("Mail export imported")
	return report, nil
}

// parseSaleMail extracts a sale record from one mail, reporting false for
// anything that is not a completed auction sale.
func parseSaleMail(m mail) (*models.SaleRecord, bool) {
	if m.ID == "" {
		return nil, false
	}
	match := saleBodyRegex.FindStringSubmatch(m.Body)
	if match == nil {
		return nil, false
	}
	credits, err := strconv.ParseInt(match[3], 10, 64)
	if err != nil {
		return nil, false
	}
	return &models.SaleRecord{
		MailID:   m.ID,
		ItemName: match[1],
		Buyer:    match[2],
		Credits:  credits,
		SoldAt:   m.SentAt,
	}, true
}

// ItemSummary is one row of the per-item sales aggregate.
type ItemSummary struct {
	ItemName string `json:"item_name"`
	Sales    int64  `json:"sales"`
	Credits  int64  `json:"credits"`
}

// Summary aggregates sale records per item, highest earners first.
func Summary(ctx context.Context, db *gorm.DB) ([]ItemSummary, error) {
	var rows []ItemSummary
	err := db.WithContext(ctx).
		Model(&models.SaleRecord{}).
		Select("item_name, count(*) as sales, sum(credits) as credits").
		Group("item_name").
		Order("credits desc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("sales summary query: %w", err)
	}
	return rows, nil
}
