package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/precip-etl/internal/config"
	"github.com/couchcryptid/precip-etl/internal/report"
)

// YearMessage is the payload published for every aggregated year.
type YearMessage struct {
	RunID          string   `json:"run_id"`
	Year           int      `json:"year"`
	Period         string   `json:"period,omitempty"`
	Total          float64  `json:"total"`
	ValidDays      int      `json:"valid_days"`
	MeanPerDay     float64  `json:"mean_per_day"`
	AnnualMean     *float64 `json:"annual_mean"`
	VariationRate  *float64 `json:"variation_rate"`
	Classification string   `json:"classification"`
	Baseline       float64  `json:"baseline"`
	FinishedAt     string   `json:"finished_at"`
}

// Writer publishes the year-by-year summary to a Kafka topic.
// It implements pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Name implements pipeline.Sink.
func (w *Writer) Name() string { return "kafka" }

// Publish serializes every year row and writes them in a single
// WriteMessages call. Rows are keyed by year so reruns land on the same
// partition.
func (w *Writer) Publish(ctx context.Context, out *report.Output) error {
	msgs, err := buildMessages(out)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write yearly summaries: %w", err)
	}
	w.logger.Info("yearly summaries published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

// Close flushes pending messages and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

func buildMessages(out *report.Output) ([]kafkago.Message, error) {
	if out.Summary == nil {
		return nil, nil
	}
	msgs := make([]kafkago.Message, 0, len(out.Summary.Years))
	for _, row := range out.Summary.Years {
		msg, err := serializeToMessage(newYearMessage(out, row))
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func newYearMessage(out *report.Output, row report.YearRow) YearMessage {
	m := YearMessage{
		Year:           row.Year,
		Total:          row.Total,
		ValidDays:      row.ValidDays,
		MeanPerDay:     row.MeanPerDay,
		VariationRate:  row.VariationRate,
		Classification: row.Classification,
		Baseline:       out.Summary.Baseline,
	}
	if row.HasAnnualMean {
		mean := row.AnnualMean
		m.AnnualMean = &mean
	}
	if p, ok := periodOf(out.Summary, row.Year); ok {
		m.Period = p
	}
	if vr := out.Validation; vr != nil {
		m.RunID = vr.RunID
		m.FinishedAt = vr.FinishedAt.Format(time.RFC3339)
	}
	return m
}

func periodOf(s *report.Summary, year int) (string, bool) {
	for _, ps := range s.Periods {
		if ps.Period.Contains(year) {
			return ps.Period.Name, true
		}
	}
	return "", false
}

// serializeToMessage marshals a YearMessage into a Kafka message.
func serializeToMessage(m YearMessage) (kafkago.Message, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize year %d: %w", m.Year, err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(m.Year)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(m.RunID)},
			{Key: "classification", Value: []byte(m.Classification)},
		},
	}, nil
}
