package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"

	"campus-ticketing/internal/models"
)

// Producer streams ticket lifecycle events to Kafka so downstream
// consumers (mailer, dashboards) can react without polling the API.
type Producer struct {
	Writer *kafka.Writer
	Topics Topics
}

type Topics struct {
	TicketRegistered    string
	TicketStatusChanged string
	TicketAttended      string
}

func NewProducer(brokers []string, topics Topics) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
	})
	return &Producer{Writer: writer, Topics: topics}
}

func (p *Producer) PublishTicketRegistered(ticket models.Ticket) error {
	return p.publish(p.Topics.TicketRegistered, ticket)
}

func (p *Producer) PublishTicketStatusChanged(ticket models.Ticket) error {
	return p.publish(p.Topics.TicketStatusChanged, ticket)
}

func (p *Producer) PublishTicketAttended(ticket models.Ticket) error {
	return p.publish(p.Topics.TicketAttended, ticket)
}

func (p *Producer) publish(topic string, ticket models.Ticket) error {
	msgBytes, err := json.Marshal(ticket)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(strconv.FormatInt(ticket.ID, 10)),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	if p.Writer == nil {
		return nil
	}
	return p.Writer.Close()
}

// All lists every topic the producer publishes to, for boot-time
// provisioning.
func (t Topics) All() []string {
	return []string{t.TicketRegistered, t.TicketStatusChanged, t.TicketAttended}
}
