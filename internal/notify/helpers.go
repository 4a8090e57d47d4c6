package notify

import (
	"context"
	"fmt"
)

// Quick-notify helpers. These are thin pre-filled calls into Notify;
// user-facing copy is in the product locale.

// Success posts a success notification.
func (e *Engine) Success(ctx context.Context, title, message string) (string, error) {
	return e.Notify(ctx, Request{Kind: KindSuccess, Title: title, Message: message})
}

// Error posts an error notification. Errors always jump the queue.
func (e *Engine) Error(ctx context.Context, title, message string) (string, error) {
	return e.Notify(ctx, Request{
		Kind:     KindError,
		Title:    title,
		Message:  message,
		Priority: PriorityHigh,
	})
}

// Warning posts a warning notification.
func (e *Engine) Warning(ctx context.Context, title, message string) (string, error) {
	return e.Notify(ctx, Request{Kind: KindWarning, Title: title, Message: message})
}

// Info posts an informational notification.
func (e *Engine) Info(ctx context.Context, title, message string) (string, error) {
	return e.Notify(ctx, Request{Kind: KindInfo, Title: title, Message: message})
}

// AppointmentBooked announces a confirmed booking.
func (e *Engine) AppointmentBooked(ctx context.Context, clientName, when string) (string, error) {
	return e.Notify(ctx, Request{
		Kind:     KindSuccess,
		Category: CategoryAppointment,
		Title:    "Appuntamento Confermato",
		Message:  fmt.Sprintf("%s — %s", clientName, when),
	})
}

// AppointmentCancelled announces a cancellation.
func (e *Engine) AppointmentCancelled(ctx context.Context, clientName, when string) (string, error) {
	return e.Notify(ctx, Request{
		Kind:     KindWarning,
		Category: CategoryAppointment,
		Title:    "Appuntamento Annullato",
		Message:  fmt.Sprintf("%s — %s", clientName, when),
	})
}

// AppointmentReminder reminds about an upcoming appointment.
func (e *Engine) AppointmentReminder(ctx context.Context, clientName, when string) (string, error) {
	return e.Notify(ctx, Request{
		Kind:     KindInfo,
		Category: CategoryAppointment,
		Priority: PriorityHigh,
		Title:    "Promemoria Appuntamento",
		Message:  fmt.Sprintf("%s — %s", clientName, when),
	})
}

// ClientCreated announces a new client record.
func (e *Engine) ClientCreated(ctx context.Context, clientName string) (string, error) {
	return e.Notify(ctx, Request{
		Kind:     KindSuccess,
		Category: CategoryClient,
		Title:    "Nuovo Cliente",
		Message:  fmt.Sprintf("%s aggiunto all'anagrafica", clientName),
	})
}

// ClientUpdated announces an updated client record.
func (e *Engine) ClientUpdated(ctx context.Context, clientName string) (string, error) {
	return e.Notify(ctx, Request{
		Kind:     KindInfo,
		Category: CategoryClient,
		Title:    "Cliente Aggiornato",
		Message:  fmt.Sprintf("Scheda di %s aggiornata", clientName),
	})
}

// PhotoUploaded announces a gallery upload.
func (e *Engine) PhotoUploaded(ctx context.Context, clientName string, count int) (string, error) {
	return e.Notify(ctx, Request{
		Kind:     KindSuccess,
		Category: CategoryUpload,
		Title:    "Foto Caricate",
		Message:  fmt.Sprintf("%d foto aggiunte alla galleria di %s", count, clientName),
	})
}

// BackupCompleted announces a finished backup.
func (e *Engine) BackupCompleted(ctx context.Context, detail string) (string, error) {
	return e.Notify(ctx, Request{
		Kind:     KindSuccess,
		Category: CategoryBackup,
		Title:    "Backup Completato",
		Message:  detail,
	})
}

// BackupFailed announces a failed backup. Stays on screen until
// dismissed.
func (e *Engine) BackupFailed(ctx context.Context, detail string) (string, error) {
	return e.Notify(ctx, Request{
		Kind:       KindError,
		Category:   CategoryBackup,
		Priority:   PriorityUrgent,
		Persistent: true,
		Title:      "Backup Fallito",
		Message:    detail,
	})
}

// Maintenance announces scheduled maintenance.
func (e *Engine) Maintenance(ctx context.Context, detail string) (string, error) {
	return e.Notify(ctx, Request{
		Kind:       KindWarning,
		Category:   CategorySystem,
		Persistent: true,
		Title:      "Manutenzione Programmata",
		Message:    detail,
	})
}
