package notification

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
)

var (
	ErrUnknownStatus = errors.New("unknown order status")
	ErrUnknownKind   = errors.New("unknown event kind")
)

// Message は送信できる状態に組み立てたメール
type Message struct {
	To      string
	Subject string
	HTML    string
}

type statusCopy struct {
	Subject string
	Color   string
	Heading string
	Body    string
	Button  string
}

var statusCopies = map[string]statusCopy{
	"completed": {
		Subject: "¡Pedido #%d Completado - Sushi & Ramen!",
		Color:   "#4CAF50",
		Heading: "¡Tu pedido #%d de Sushi & Ramen ha sido completado!",
		Body:    "¡Tu comida está lista para que la disfrutes! Agradecemos tu preferencia por Sushi & Ramen.",
		Button:  "Ver Detalles del Pedido",
	},
	"pending": {
		Subject: "¡Pedido #%d Pendiente - Sushi & Ramen!",
		Color:   "#ffc107",
		Heading: "¡Tu pedido #%d de Sushi & Ramen está Pendiente!",
		Body:    "Estamos revisando los detalles de tu pedido y nos pondremos en contacto contigo si necesitamos más información.",
		Button:  "Ver Detalles del Pedido",
	},
	"processing": {
		Subject: "¡Pedido #%d En Proceso - Sushi & Ramen!",
		Color:   "#17a2b8",
		Heading: "¡Tu pedido #%d de Sushi & Ramen está En Proceso!",
		Body:    "Esto significa que estamos preparando tu deliciosa comida y pronto estará lista.",
		Button:  "Seguir Mi Pedido",
	},
	"cancelled": {
		Subject: "¡Pedido #%d Cancelado - Sushi & Ramen!",
		Color:   "#dc3545",
		Heading: "Tu pedido #%d de Sushi & Ramen ha sido cancelado",
		Body:    "Si ya realizaste un pago, el reembolso se procesará en los próximos días. Si tienes dudas, contacta a nuestro equipo de soporte.",
		Button:  "Ver Detalles del Pedido",
	},
}

const layoutHTML = `{{define "layout"}}<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; border: 1px solid #ddd; border-radius: 8px; overflow: hidden;">
<div style="background-color: {{.Color}}; color: white; padding: 20px; text-align: center;"><h2>{{.Heading}}</h2></div>
<div style="padding: 20px;">{{template "body" .}}
<p>Saludos cordiales,<br/>El Equipo de Sushi & Ramen</p></div>
<div style="background-color: #f8f9fa; color: #666; padding: 15px; text-align: center; font-size: 0.8em; border-top: 1px solid #eee;">Este es un correo electrónico automático, por favor no lo respondas directamente.</div>
</div>{{end}}`

const statusHTML = `{{define "body"}}<p>Hola{{if .UserName}} {{.UserName}}{{end}},</p>
<p>Tu pedido <strong>#{{.OrderID}}</strong> con un total de <strong>${{.Total}}</strong> ha sido marcado como <strong>{{.StatusLabel}}</strong>.</p>
<p>{{.Body}}</p>
<p style="text-align: center; margin: 25px 0;"><a href="{{.URL}}" style="display: inline-block; padding: 12px 25px; background-color: #007bff; color: white; text-decoration: none; border-radius: 5px; font-weight: bold;">{{.Button}}</a></p>{{end}}`

const confirmationHTML = `{{define "body"}}<p>Hola{{if .UserName}} {{.UserName}}{{end}},</p>
<p>Hemos recibido tu pedido <strong>#{{.OrderID}}</strong>. Este es el resumen:</p>
<table style="width: 100%; border-collapse: collapse;">
<tr><th align="left">Producto</th><th align="right">Cantidad</th><th align="right">Precio</th></tr>
{{range .Items}}<tr><td>{{.Name}}</td><td align="right">{{.Quantity}}</td><td align="right">${{.Price}}</td></tr>
{{end}}</table>
<p><strong>Total:</strong> ${{.Total}}</p>
<p><strong>Método de pago:</strong> {{.PaymentMethod}}</p>
<p><strong>Dirección de envío:</strong> {{.ShippingAddress}}</p>
<p style="text-align: center; margin: 25px 0;"><a href="{{.URL}}" style="display: inline-block; padding: 12px 25px; background-color: #007bff; color: white; text-decoration: none; border-radius: 5px; font-weight: bold;">Ver Detalles del Pedido</a></p>{{end}}`

const resetHTML = `{{define "body"}}<p>Haz clic en el siguiente botón para restablecer tu contraseña (este enlace expirará en 1 hora):</p>
<p style="text-align: center; margin: 30px 0;"><a href="{{.URL}}" style="display: inline-block; padding: 12px 24px; background-color: #4299e1; color: white; text-decoration: none; border-radius: 4px; font-weight: bold;">Restablecer contraseña</a></p>
<p style="color: #718096; font-size: 14px;">Si no solicitaste este cambio, puedes ignorar este mensaje.</p>{{end}}`

var statusLabels = map[string]string{
	"completed":  "completado",
	"pending":    "pendiente",
	"processing": "en proceso",
	"cancelled":  "cancelado",
}

type itemView struct {
	Name     string
	Quantity int64
	Price    string
}

type view struct {
	Color           string
	Heading         string
	Body            string
	Button          string
	UserName        string
	OrderID         int64
	Total           string
	StatusLabel     string
	PaymentMethod   string
	ShippingAddress string
	Items           []itemView
	URL             string
}

// Renderer はEventからMessageを組み立てる
type Renderer struct {
	frontendURL  string
	status       *template.Template
	confirmation *template.Template
	reset        *template.Template
}

func NewRenderer(frontendURL string) (*Renderer, error) {
	parse := func(name, body string) (*template.Template, error) {
		t, err := template.New(name).Parse(layoutHTML)
		if err != nil {
			return nil, err
		}
		return t.Parse(body)
	}

	status, err := parse("status", statusHTML)
	if err != nil {
		return nil, fmt.Errorf("parse status template: %w", err)
	}
	confirmation, err := parse("confirmation", confirmationHTML)
	if err != nil {
		return nil, fmt.Errorf("parse confirmation template: %w", err)
	}
	reset, err := parse("reset", resetHTML)
	if err != nil {
		return nil, fmt.Errorf("parse reset template: %w", err)
	}

	return &Renderer{
		frontendURL:  frontendURL,
		status:       status,
		confirmation: confirmation,
		reset:        reset,
	}, nil
}

func (r *Renderer) Render(ev Event) (Message, error) {
	switch ev.Kind {
	case KindOrderConfirmation:
		return r.renderConfirmation(ev)
	case KindOrderStatus:
		return r.renderStatus(ev)
	case KindPasswordReset:
		return r.renderReset(ev)
	}
	return Message{}, fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
}

func (r *Renderer) orderURL(orderID int64) string {
	return r.frontendURL + "/orders/" + strconv.FormatInt(orderID, 10)
}

func (r *Renderer) renderStatus(ev Event) (Message, error) {
	sc, ok := statusCopies[ev.Status]
	if !ok {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownStatus, ev.Status)
	}

	v := view{
		Color:       sc.Color,
		Heading:     fmt.Sprintf(sc.Heading, ev.OrderID),
		Body:        sc.Body,
		Button:      sc.Button,
		UserName:    ev.UserName,
		OrderID:     ev.OrderID,
		Total:       ev.Total.StringFixed(2),
		StatusLabel: statusLabels[ev.Status],
		URL:         r.orderURL(ev.OrderID),
	}
	return r.execute(r.status, ev.To, fmt.Sprintf(sc.Subject, ev.OrderID), v)
}

func (r *Renderer) renderConfirmation(ev Event) (Message, error) {
	items := make([]itemView, 0, len(ev.Items))
	for _, it := range ev.Items {
		items = append(items, itemView{Name: it.Name, Quantity: it.Quantity, Price: it.Price.StringFixed(2)})
	}

	v := view{
		Color:           "#e53e3e",
		Heading:         fmt.Sprintf("¡Gracias por tu pedido #%d!", ev.OrderID),
		UserName:        ev.UserName,
		OrderID:         ev.OrderID,
		Total:           ev.Total.StringFixed(2),
		PaymentMethod:   ev.PaymentMethod,
		ShippingAddress: ev.ShippingAddress,
		Items:           items,
		URL:             r.orderURL(ev.OrderID),
	}
	return r.execute(r.confirmation, ev.To, fmt.Sprintf("[Sushi] Confirmación de pedido #%d", ev.OrderID), v)
}

func (r *Renderer) renderReset(ev Event) (Message, error) {
	if ev.ResetToken == "" {
		return Message{}, errors.New("password reset event without token")
	}
	v := view{
		Color:   "#2d3748",
		Heading: "Restablecer tu contraseña",
		URL:     r.frontendURL + "/reset-password?token=" + url.QueryEscape(ev.ResetToken),
	}
	return r.execute(r.reset, ev.To, "Restablecimiento de contraseña", v)
}

func (r *Renderer) execute(t *template.Template, to string, subject string, v view) (Message, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return Message{To: to, Subject: subject, HTML: buf.String()}, nil
}
