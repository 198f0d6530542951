// Package kafka consumes vendor order messages and stages them for the
// vendor sync run.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dispatch/internal/adapters/out/itemsummary"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/feed"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/metrics"

	kafkago "github.com/segmentio/kafka-go"
)

const retryDelay = time.Second

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// VendorOrderStager is satisfied by commands.StageVendorOrderCommandHandler.
type VendorOrderStager interface {
	Handle(ctx context.Context, command commands.StageVendorOrderCommand) error
}

// VendorOrderMessage is the JSON payload vendors publish. ItemSummary uses
// the composite "[category] name(qty), ... | ..." form.
type VendorOrderMessage struct {
	Reference     string `json:"reference"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Address       string `json:"address"`
	Memo          string `json:"memo"`
	Status        string `json:"status"`
	ItemSummary   string `json:"item_summary"`
}

// VendorOrdersConsumer reads the vendor topic with a consumer group and
// commits each message once it is staged or rejected. A staging failure
// that is not the message's fault is retried until it succeeds or the
// context ends, so offsets never move past an order that was not stored.
type VendorOrdersConsumer struct {
	reader messageReader
	stager VendorOrderStager
	logger *slog.Logger
}

func NewVendorOrdersConsumer(
	brokers []string,
	groupID string,
	topic string,
	stager VendorOrderStager,
	logger *slog.Logger,
) (*VendorOrdersConsumer, error) {
	if len(brokers) == 0 {
		return nil, errs.NewValueIsRequiredError("kafka brokers")
	}
	if strings.TrimSpace(groupID) == "" {
		return nil, errs.NewValueIsRequiredError("consumer group")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, errs.NewValueIsRequiredError("vendor orders topic")
	}
	if stager == nil {
		return nil, errs.NewValueIsRequiredError("stager")
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
	})
	return newVendorOrdersConsumer(reader, stager, logger), nil
}

func newVendorOrdersConsumer(reader messageReader, stager VendorOrderStager, logger *slog.Logger) *VendorOrdersConsumer {
	return &VendorOrdersConsumer{
		reader: reader,
		stager: stager,
		logger: logger.With("component", "vendor_orders_consumer"),
	}
}

// Run blocks until ctx is canceled or the reader fails.
func (c *VendorOrdersConsumer) Run(ctx context.Context) error {
	c.logger.InfoContext(ctx, "Vendor orders consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch vendor order: %w", err)
		}

		if err = c.process(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err = c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit vendor order: %w", err)
		}
	}
}

func (c *VendorOrdersConsumer) Close() error {
	return c.reader.Close()
}

// process returns an error only when ctx ended while retrying.
func (c *VendorOrdersConsumer) process(ctx context.Context, msg kafkago.Message) error {
	command, err := decode(msg.Value)
	if err != nil {
		c.reject(ctx, msg, err)
		return nil
	}

	for {
		err = c.stager.Handle(ctx, command)
		switch {
		case err == nil:
			metrics.VendorOrdersTotal.WithLabelValues("staged").Inc()
			c.logger.InfoContext(ctx, "Vendor order staged",
				"reference", command.Order().Reference,
				"status", command.Order().Status.String(),
				"issues", len(command.Order().Issues))
			return nil
		case isRejection(err):
			c.reject(ctx, msg, err)
			return nil
		}

		c.logger.ErrorContext(ctx, "Staging vendor order failed, retrying",
			"reference", command.Order().Reference, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}

func (c *VendorOrdersConsumer) reject(ctx context.Context, msg kafkago.Message, err error) {
	metrics.VendorOrdersTotal.WithLabelValues("rejected").Inc()
	c.logger.ErrorContext(ctx, "Vendor order rejected",
		"partition", msg.Partition, "offset", msg.Offset, "error", err)
}

func isRejection(err error) bool {
	return errors.Is(err, errs.ErrValueIsRequired) ||
		errors.Is(err, errs.ErrValueIsInvalid) ||
		errors.Is(err, errs.ErrParse)
}

// decode turns a payload into a staging command. Malformed item fragments
// are kept as issues on the order; only an unreadable message is rejected.
func decode(payload []byte) (commands.StageVendorOrderCommand, error) {
	var m VendorOrderMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return commands.StageVendorOrderCommand{}, errs.NewParseErrorWithCause(string(payload), err)
	}

	status, err := parseStatus(m.Status)
	if err != nil {
		return commands.StageVendorOrderCommand{}, err
	}

	order := feed.Order{
		Reference: m.Reference,
		Status:    status,
		Source:    task.SourceVendor,
	}

	if status == feed.StatusReadyForDispatch {
		recipient, err := task.NewRecipient(m.CustomerName, m.CustomerPhone, m.Address, m.Memo)
		if err != nil {
			return commands.StageVendorOrderCommand{}, err
		}
		order.Recipient = recipient
		order.Blocks, order.Issues = itemsummary.Parse(m.ItemSummary)
	} else {
		order.Recipient = task.Recipient{
			Name:    strings.TrimSpace(m.CustomerName),
			Phone:   strings.TrimSpace(m.CustomerPhone),
			Address: strings.TrimSpace(m.Address),
			Memo:    strings.TrimSpace(m.Memo),
		}
	}

	return commands.NewStageVendorOrderCommand(order)
}

func parseStatus(s string) (feed.Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ready_for_dispatch", "ready":
		return feed.StatusReadyForDispatch, nil
	case "canceled", "cancelled":
		return feed.StatusCanceled, nil
	default:
		return feed.StatusOther, errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%q is not a vendor order status", s))
	}
}
