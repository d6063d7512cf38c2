package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/valyala/bytebufferpool"

	"github.com/wicketplay/fantasy-cricket/internal/domain/userprofile"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

const defaultSendInterval = 50 * time.Millisecond

// botSender is the slice of tgbotapi.BotAPI the notifier uses.
type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type queuedMessage struct {
	chatID int64
	text   string
}

type Config struct {
	BotToken string
	// AdminChatID, when set, receives operator alerts (failed settlements,
	// stuck jobs). Zero disables the channel.
	AdminChatID  int64
	SendInterval time.Duration
	QueueSize    int
	Logger       *logging.Logger
}

// Notifier delivers contest and match alerts over Telegram. Sends go
// through a buffered queue drained by a single worker so bursts from
// settlement fan-out stay under the bot API rate limit.
type Notifier struct {
	bot          botSender
	userRepo     userprofile.Repository
	logger       *logging.Logger
	adminChatID  int64
	sendInterval time.Duration

	queue     chan queuedMessage
	queueDone chan struct{}
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc

	mu       sync.Mutex
	lastSend time.Time
}

func NewNotifier(cfg Config, userRepo userprofile.Repository) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = false
	if _, err := bot.GetMe(); err != nil {
		return nil, fmt.Errorf("verify telegram bot: %w", err)
	}
	return newNotifier(cfg, bot, userRepo), nil
}

func newNotifier(cfg Config, bot botSender, userRepo userprofile.Repository) *Notifier {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	sendInterval := cfg.SendInterval
	if sendInterval <= 0 {
		sendInterval = defaultSendInterval
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}

	ctx, cancel := context.WithCancel(context.Background())
	n := &Notifier{
		bot:          bot,
		userRepo:     userRepo,
		logger:       logger,
		adminChatID:  cfg.AdminChatID,
		sendInterval: sendInterval,
		queue:        make(chan queuedMessage, queueSize),
		queueDone:    make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}

	n.wg.Add(1)
	go n.messageSender()

	return n
}

// Notify queues a direct message to one user. Users without a Telegram
// chat are skipped silently.
func (n *Notifier) Notify(ctx context.Context, userID, title, message string) error {
	user, found, err := n.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve user %s: %w", userID, err)
	}
	if !found || user.TelegramID == 0 {
		return nil
	}
	return n.enqueue(ctx, user.TelegramID, formatMessage(title, message))
}

// Broadcast queues the message to every registered user.
func (n *Notifier) Broadcast(ctx context.Context, title, message string) error {
	users, err := n.userRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list broadcast recipients: %w", err)
	}

	text := formatMessage(title, message)
	queued := 0
	for _, user := range users {
		if user.TelegramID == 0 {
			continue
		}
		if err := n.enqueue(ctx, user.TelegramID, text); err != nil {
			n.logger.WarnContext(ctx, "broadcast enqueue failed",
				"user_id", user.ID,
				"error", err,
			)
			continue
		}
		queued++
	}

	n.logger.InfoContext(ctx, "broadcast queued",
		"recipients", queued,
		"queue_length", len(n.queue),
	)
	return nil
}

// Alert queues a message to the admin chat. A no-op when no admin chat is
// configured.
func (n *Notifier) Alert(ctx context.Context, title, message string) error {
	if n.adminChatID == 0 {
		return nil
	}
	return n.enqueue(ctx, n.adminChatID, formatMessage(title, message))
}

func (n *Notifier) enqueue(ctx context.Context, chatID int64, text string) error {
	select {
	case <-n.ctx.Done():
		return fmt.Errorf("notifier stopped")
	case <-ctx.Done():
		return ctx.Err()
	case n.queue <- queuedMessage{chatID: chatID, text: text}:
		return nil
	default:
		return fmt.Errorf("message queue is full")
	}
}

// Stop drains queued messages and waits for the sender worker to exit.
func (n *Notifier) Stop() {
	if n == nil {
		return
	}
	n.cancel()
	<-n.queueDone
	n.wg.Wait()
}

func (n *Notifier) messageSender() {
	defer n.wg.Done()

	for {
		select {
		case <-n.ctx.Done():
			for {
				select {
				case msg := <-n.queue:
					n.send(msg)
				default:
					close(n.queueDone)
					return
				}
			}
		case msg := <-n.queue:
			n.send(msg)
		}
	}
}

func (n *Notifier) send(msg queuedMessage) {
	n.mu.Lock()
	elapsed := time.Since(n.lastSend)
	if elapsed < n.sendInterval {
		wait := n.sendInterval - elapsed
		n.mu.Unlock()
		select {
		case <-n.ctx.Done():
			return
		case <-time.After(wait):
		}
		n.mu.Lock()
	}
	n.lastSend = time.Now()
	n.mu.Unlock()

	tgMsg := tgbotapi.NewMessage(msg.chatID, msg.text)
	tgMsg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.bot.Send(tgMsg); err != nil {
		n.logger.Warn("telegram send failed",
			"chat_id", msg.chatID,
			"error", err,
		)
	}
}

func formatMessage(title, message string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	title = strings.TrimSpace(title)
	if title != "" {
		buf.WriteString("*")
		buf.WriteString(escapeMarkdown(title))
		buf.WriteString("*\n\n")
	}
	buf.WriteString(escapeMarkdown(strings.TrimSpace(message)))
	return buf.String()
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
