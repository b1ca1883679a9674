package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultExchange = "fitness.notifications"

// Mailer implements the auth Mailer port by publishing email events to a
// topic exchange; an email worker owns delivery. Publishing uses confirm
// mode with mandatory routing, so an unroutable or nacked event surfaces as
// an error to the caller (who may choose to log and continue).
type Mailer struct {
	url      string
	exchange string
	baseURL  string // e.g. https://app.example.com; token link is built here

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

type emailEvent struct {
	Email string `json:"email"`
	URL   string `json:"url"`
}

func NewMailer(url, baseURL string) (*Mailer, error) {
	m := &Mailer{
		url:      url,
		exchange: DefaultExchange,
		baseURL:  baseURL,
	}
	if err := m.connect(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mailer) SetExchange(name string) { m.exchange = name }

func (m *Mailer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ch != nil {
		_ = m.ch.Close()
		m.ch = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	return nil
}

// ---- application.Mailer ----

func (m *Mailer) SendVerificationEmail(ctx context.Context, email, token string) error {
	return m.publishJSON(ctx, "auth.email.verify.requested", emailEvent{
		Email: email,
		URL:   m.baseURL + "/api/auth/verify-email?token=" + token,
	})
}

func (m *Mailer) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	return m.publishJSON(ctx, "auth.password.reset.requested", emailEvent{
		Email: email,
		URL:   m.baseURL + "/reset-password?token=" + token,
	})
}

// ---- internal ----

func (m *Mailer) connect() error {
	conn, err := amqp.Dial(m.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		m.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("exchange declare: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("confirm mode: %w", err)
	}

	m.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	m.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	m.conn = conn
	m.ch = ch
	return nil
}

func (m *Mailer) ensureConnected() error {
	if m.conn != nil && !m.conn.IsClosed() && m.ch != nil {
		return nil
	}
	return m.connect()
}

func (m *Mailer) resetConn() {
	if m.ch != nil {
		_ = m.ch.Close()
		m.ch = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
}

func (m *Mailer) publishJSON(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	// Ensure there is a deadline to avoid blocking forever.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureConnected(); err != nil {
		return err
	}

	// Drain stale confirm / return messages from a previous publish.
drain:
	for {
		select {
		case <-m.confirmCh:
		case <-m.returnCh:
		default:
			break drain
		}
	}

	if err := m.ch.PublishWithContext(
		ctx,
		m.exchange,
		routingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		m.resetConn()
		return fmt.Errorf("publish failed: %w", err)
	}

	select {
	case ret := <-m.returnCh:
		// No queue is bound for this routing key.
		return fmt.Errorf("rabbitmq unroutable: key=%s code=%d text=%s",
			routingKey, ret.ReplyCode, ret.ReplyText)

	case conf := <-m.confirmCh:
		if !conf.Ack {
			return fmt.Errorf("rabbitmq nack: key=%s deliveryTag=%d", routingKey, conf.DeliveryTag)
		}
		return nil

	case <-ctx.Done():
		return fmt.Errorf("publish confirm timeout: key=%s: %w", routingKey, ctx.Err())
	}
}
