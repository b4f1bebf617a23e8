package alerta

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Mensagem é o payload entregue aos canais externos.
type Mensagem struct {
	Destinatario int64
	Papel        string
	Titulo       string
	Texto        string
	Estado       string
}

// Notifier envia notificações para canais externos (chat, push).
// A entrega é melhor esforço: falha de canal não invalida a persistência.
type Notifier interface {
	Notify(ctx context.Context, msg Mensagem) error
	Nome() string
}

// WebhookNotifier publica mensagens em um webhook de chat.
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookNotifier cria o notificador; devolve nil quando não configurado.
func NewWebhookNotifier(webhookURL string) Notifier {
	if webhookURL == "" {
		return nil
	}
	return &WebhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *WebhookNotifier) Nome() string { return "webhook" }

func (n *WebhookNotifier) Notify(ctx context.Context, msg Mensagem) error {
	payload := map[string]any{
		"text": formatMensagem(msg),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.New("webhook retornou erro")
	}
	return nil
}

func formatMensagem(msg Mensagem) string {
	emoji := ":warning:"
	if msg.Estado == EstadoPessimo {
		emoji = ":rotating_light:"
	}
	if msg.Titulo != "" {
		return emoji + " *" + msg.Titulo + "*\n" + msg.Texto
	}
	return emoji + " " + msg.Texto
}

// PushNotifier encaminha a notificação para o gateway de push interno.
type PushNotifier struct {
	url    string
	token  string
	client *http.Client
}

// NewPushNotifier cria o notificador de push; devolve nil quando não configurado.
func NewPushNotifier(url, token string) Notifier {
	if url == "" {
		return nil
	}
	return &PushNotifier{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *PushNotifier) Nome() string { return "push" }

func (n *PushNotifier) Notify(ctx context.Context, msg Mensagem) error {
	payload := map[string]any{
		"matricula": msg.Destinatario,
		"titulo":    msg.Titulo,
		"corpo":     msg.Texto,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway retornou %d", resp.StatusCode)
	}
	return nil
}
