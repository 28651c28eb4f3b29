package usecase

import (
	"context"
	"strings"
	"sync"

	"woodify/internal/domain/model"
)

// 見積もりフォームのステップ
type QuoteStep int

const (
	StepIdentity QuoteStep = iota + 1
	StepDetails
	StepTimeline
	StepSubmitting
	StepSubmitted
)

func (s QuoteStep) String() string {
	switch s {
	case StepIdentity:
		return "identity"
	case StepDetails:
		return "details"
	case StepTimeline:
		return "timeline"
	case StepSubmitting:
		return "submitting"
	case StepSubmitted:
		return "submitted"
	}
	return "unknown"
}

type ContactInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

// 添付ファイル（specialモードのみ）
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// usecaseがValidatorInterfaceに依存する約束
type QuoteValidator interface {
	// 問題のあるフィールド名 → メッセージ。問題なければ空
	ValidateContact(ctx context.Context, in ContactInput) map[string]string
}

// QuoteWorkflow は1件の見積もりフォームの状態。
// special: Identity → Details → Timeline → 送信
// product: Identity → Details → 送信
type QuoteWorkflow struct {
	mu sync.Mutex

	mode    model.QuoteMode
	product *model.ProductSnapshot
	v       QuoteValidator

	step     QuoteStep
	resumeAt QuoteStep // 送信失敗時に戻るステップ
	inFlight bool

	contact     ContactInput
	location    string
	description string
	attachment  *Attachment
	timeline    model.Timeline

	submitted *model.QuoteRequest
	lastErr   error
}

// NewQuoteWorkflow はproductモードならスナップショット必須
func NewQuoteWorkflow(mode model.QuoteMode, product *model.ProductSnapshot, v QuoteValidator) (*QuoteWorkflow, error) {
	if !mode.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"mode": "must be special or product"}}
	}
	if mode == model.QuoteModeProduct && product == nil {
		return nil, &ValidationError{Fields: map[string]string{"product": "required for product requests"}}
	}
	return &QuoteWorkflow{
		mode:     mode,
		product:  product,
		v:        v,
		step:     StepIdentity,
		timeline: model.TimelineOneTwoWeeks,
	}, nil
}

func (w *QuoteWorkflow) Mode() model.QuoteMode {
	return w.mode
}

func (w *QuoteWorkflow) Step() QuoteStep {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *QuoteWorkflow) InFlight() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight
}

// Err は直前の送信エラー
func (w *QuoteWorkflow) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Submitted は送信済みの記録
func (w *QuoteWorkflow) Submitted() *model.QuoteRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitted
}

// SubmitIdentity は名前・メール・電話を受けて次へ。通信はしない
func (w *QuoteWorkflow) SubmitIdentity(ctx context.Context, in ContactInput) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepIdentity {
		return ErrInvalidStep
	}

	in = ContactInput{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Phone: strings.TrimSpace(in.Phone),
	}
	if fields := w.validateContact(ctx, in); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	w.contact = in
	w.step = StepDetails
	return nil
}

func (w *QuoteWorkflow) validateContact(ctx context.Context, in ContactInput) map[string]string {
	if w.v != nil {
		return w.v.ValidateContact(ctx, in)
	}
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "required"
	}
	if in.Email == "" {
		fields["email"] = "required"
	}
	if in.Phone == "" {
		fields["phone"] = "required"
	}
	return fields
}

// SubmitProductDetails はproductモードの2ステップ目。ここから送信できる
func (w *QuoteWorkflow) SubmitProductDetails(location, comments string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mode != model.QuoteModeProduct || w.step != StepDetails {
		return ErrInvalidStep
	}
	location = strings.TrimSpace(location)
	if location == "" {
		return &ValidationError{Fields: map[string]string{"location": "required"}}
	}

	w.location = location
	w.description = strings.TrimSpace(comments)
	return nil
}

// SubmitSpecialDetails は説明と任意の添付を受けてTimelineへ
func (w *QuoteWorkflow) SubmitSpecialDetails(description string, att *Attachment) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mode != model.QuoteModeSpecial || w.step != StepDetails {
		return ErrInvalidStep
	}
	if att != nil {
		if fields := validateAttachment(att); len(fields) > 0 {
			return &ValidationError{Fields: fields}
		}
	}

	w.description = strings.TrimSpace(description)
	w.attachment = att
	w.step = StepTimeline
	return nil
}

// SelectTimeline は固定の選択肢から選ぶ
func (w *QuoteWorkflow) SelectTimeline(t model.Timeline) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepTimeline {
		return ErrInvalidStep
	}
	if !t.Valid() {
		return &ValidationError{Fields: map[string]string{"timeline": "must be one of 1-2 Weeks, 1 Month, Flexible"}}
	}
	w.timeline = t
	return nil
}

// Back は1つ前へ。Identityと送信中・送信後は不可
func (w *QuoteWorkflow) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case StepDetails:
		w.step = StepIdentity
	case StepTimeline:
		w.step = StepDetails
	default:
		return ErrInvalidStep
	}
	return nil
}

// CanSubmit は送信できるステップにいるか
func (w *QuoteWorkflow) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canSubmitLocked()
}

func (w *QuoteWorkflow) canSubmitLocked() bool {
	if w.inFlight {
		return false
	}
	switch w.mode {
	case model.QuoteModeProduct:
		return w.step == StepDetails && w.location != ""
	case model.QuoteModeSpecial:
		return w.step == StepTimeline
	}
	return false
}

// Reset は新しい依頼を始める。連絡先は残して入力内容だけ消す
func (w *QuoteWorkflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.step = StepIdentity
	w.resumeAt = 0
	w.inFlight = false
	w.location = ""
	w.description = ""
	w.attachment = nil
	w.timeline = model.TimelineOneTwoWeeks
	w.submitted = nil
	w.lastErr = nil
}

// beginSubmit は送信中にしてその時点の入力を返す
func (w *QuoteWorkflow) beginSubmit() (quoteDraft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.inFlight {
		return quoteDraft{}, ErrSubmissionInFlight
	}
	if !w.canSubmitLocked() {
		return quoteDraft{}, ErrInvalidStep
	}

	w.inFlight = true
	w.resumeAt = w.step
	w.step = StepSubmitting
	w.lastErr = nil

	return quoteDraft{
		mode:        w.mode,
		product:     w.product,
		contact:     w.contact,
		location:    w.location,
		description: w.description,
		attachment:  w.attachment,
		timeline:    w.timeline,
	}, nil
}

// finishSubmit は成功ならSubmitted、失敗なら元のステップに戻す
func (w *QuoteWorkflow) finishSubmit(rec *model.QuoteRequest, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.inFlight = false
	if err != nil {
		w.step = w.resumeAt
		w.lastErr = err
		return
	}
	w.step = StepSubmitted
	w.submitted = rec
}

// 送信時点の入力（ロック外で使う）
type quoteDraft struct {
	mode        model.QuoteMode
	product     *model.ProductSnapshot
	contact     ContactInput
	location    string
	description string
	attachment  *Attachment
	timeline    model.Timeline
}
