package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/edupulse/engage-api/internal/authz"
	"github.com/edupulse/engage-api/internal/dto"
	"github.com/edupulse/engage-api/internal/models"
	"github.com/edupulse/engage-api/internal/notification"
	"github.com/edupulse/engage-api/internal/observability"
	"github.com/edupulse/engage-api/internal/presence"
	"github.com/edupulse/engage-api/internal/progression"
	"github.com/edupulse/engage-api/internal/repository"
	"github.com/edupulse/engage-api/pkg/mailer"
)

const (
	// DefaultLessonXP applies when neither the lesson nor the caller names
	// a reward.
	DefaultLessonXP = 50
	// NotableXPThreshold is the reward size that earns a progress
	// notification even without a level-up.
	NotableXPThreshold = 100

	emailDispatchTimeout = 10 * time.Second
)

// EngagementService is the entry point for domain events that drive
// progression and notification fan-out. Every method is a one-shot
// transaction: authorize, mutate, then best-effort side channels.
type EngagementService interface {
	CompleteLesson(ctx context.Context, actor authz.Actor, payload dto.LessonCompletedRequest) (dto.LessonCompletedResponse, error)
	ApproveAccount(ctx context.Context, actor authz.Actor, studentID uint) (dto.StudentStatusResponse, error)
	RejectAccount(ctx context.Context, actor authz.Actor, studentID uint, payload dto.AccountRejectRequest) (dto.StudentStatusResponse, error)
	RecordStudentAdded(ctx context.Context, actor authz.Actor, payload dto.StudentAddedRequest) error
	CheckAttendance(ctx context.Context, actor authz.Actor, payload dto.AttendanceCheckRequest) (dto.AttendanceReport, error)
	RecordHeartbeat(ctx context.Context, payload dto.HeartbeatRequest) error
}

type engagementService struct {
	students      repository.StudentRepository
	lessons       repository.LessonRepository
	bookings      repository.BookingRepository
	parents       repository.ParentRepository
	presenceStore repository.PresenceRepository
	tracker       *presence.Tracker
	resolver      *authz.Resolver
	store         *notification.Store
	mailer        mailer.Mailer
	activity      ActivityRecorder
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// EngagementDeps groups the collaborators of the engagement service.
type EngagementDeps struct {
	Students repository.StudentRepository
	Lessons  repository.LessonRepository
	Bookings repository.BookingRepository
	Parents  repository.ParentRepository
	Presence repository.PresenceRepository
	Tracker  *presence.Tracker
	Resolver *authz.Resolver
	Store    *notification.Store
	Mailer   mailer.Mailer
	Activity ActivityRecorder
}

// NewEngagementService constructs the engagement orchestrator.
func NewEngagementService(deps EngagementDeps, validate *validator.Validate, logger zerolog.Logger) EngagementService {
	tracker := deps.Tracker
	if tracker == nil {
		tracker = presence.NewTracker()
	}

	return &engagementService{
		students:      deps.Students,
		lessons:       deps.Lessons,
		bookings:      deps.Bookings,
		parents:       deps.Parents,
		presenceStore: deps.Presence,
		tracker:       tracker,
		resolver:      deps.Resolver,
		store:         deps.Store,
		mailer:        deps.Mailer,
		activity:      deps.Activity,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "engagement_service").Logger(),
		tracer:        otel.Tracer("github.com/edupulse/engage-api/internal/service/engagement"),
	}
}

func (s *engagementService) CompleteLesson(ctx context.Context, actor authz.Actor, payload dto.LessonCompletedRequest) (dto.LessonCompletedResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonCompletedResponse{}, WrapError(CodeValidation, "invalid lesson completion payload", err)
	}

	ctx, span := s.tracer.Start(ctx, "engagement.complete_lesson", trace.WithAttributes(
		attribute.Int("student.id", int(payload.StudentID)),
		attribute.Int("lesson.id", int(payload.LessonID)),
	))
	defer span.End()

	if err := s.authorize(ctx, actor, payload.StudentID); err != nil {
		return dto.LessonCompletedResponse{}, err
	}

	student, err := s.students.GetByID(ctx, payload.StudentID)
	if err != nil {
		return dto.LessonCompletedResponse{}, translateLookup(err, "student not found")
	}

	lesson, err := s.lessons.GetByID(ctx, payload.LessonID)
	if err != nil {
		return dto.LessonCompletedResponse{}, translateLookup(err, "lesson not found")
	}

	parentRecipient, err := s.parentRecipient(ctx, student)
	if err != nil {
		return dto.LessonCompletedResponse{}, err
	}
	if parentRecipient == "" {
		return dto.LessonCompletedResponse{}, NewError(CodeValidation, "student has no resolvable parent recipient")
	}

	reward := DefaultLessonXP
	switch {
	case lesson.XPReward != nil:
		reward = *lesson.XPReward
	case payload.XPHint != nil:
		reward = *payload.XPHint
	}

	result, err := progression.ApplyXP(progression.State{
		TotalXP:      student.TotalXP,
		CurrentLevel: student.CurrentLevel,
	}, reward)
	if err != nil {
		return dto.LessonCompletedResponse{}, WrapError(CodeValidation, "invalid xp reward", err)
	}

	completion := models.LessonCompletion{
		StudentID: student.ID,
		LessonID:  lesson.ID,
		XPAwarded: reward,
	}
	if err := s.lessons.RecordCompletion(ctx, &completion); err != nil {
		if errors.Is(err, repository.ErrCompletionExists) {
			return dto.LessonCompletedResponse{}, WrapError(CodeConflict, "lesson already completed by this student", err)
		}
		return dto.LessonCompletedResponse{}, WrapError(CodeInternal, "failed to record lesson completion", err)
	}

	updated, err := s.students.AddXP(ctx, student.ID, reward)
	if err != nil {
		return dto.LessonCompletedResponse{}, WrapError(CodeInternal, "failed to persist progression", err)
	}

	observability.XPAwarded().Add(float64(reward))
	if result.LeveledUp {
		observability.LevelUps().Inc()
	}

	// The progression write is committed; from here on the notification
	// side channel must not fail the request.
	switch {
	case result.LeveledUp:
		s.insert(parentRecipient, notification.Message{
			Title: fmt.Sprintf("%s reached level %d!", student.Name, result.CurrentLevel),
			Body:  fmt.Sprintf("%s leveled up after earning %d XP in %q.", student.Name, reward, lesson.Title),
			Kind:  notification.KindAchievement,
			Metadata: map[string]interface{}{
				"student_id": student.ID,
				"level":      result.CurrentLevel,
			},
		})
	case reward >= NotableXPThreshold:
		s.insert(parentRecipient, notification.Message{
			Title: fmt.Sprintf("%s earned %d XP", student.Name, reward),
			Body:  fmt.Sprintf("%s completed %q and earned %d XP.", student.Name, lesson.Title, reward),
			Kind:  notification.KindProgress,
			Metadata: map[string]interface{}{
				"student_id": student.ID,
				"lesson_id":  lesson.ID,
			},
		})
	}

	s.logger.Info().
		Uint("student_id", student.ID).
		Uint("lesson_id", lesson.ID).
		Int("xp_awarded", reward).
		Bool("leveled_up", result.LeveledUp).
		Msg("lesson completion processed")

	return dto.LessonCompletedResponse{
		StudentID:    updated.ID,
		LessonID:     lesson.ID,
		XPAwarded:    reward,
		TotalXP:      updated.TotalXP,
		CurrentLevel: updated.CurrentLevel,
		LeveledUp:    result.LeveledUp,
	}, nil
}

func (s *engagementService) ApproveAccount(ctx context.Context, actor authz.Actor, studentID uint) (dto.StudentStatusResponse, error) {
	return s.moderateAccount(ctx, actor, studentID, models.StudentStatusApproved, "")
}

func (s *engagementService) RejectAccount(ctx context.Context, actor authz.Actor, studentID uint, payload dto.AccountRejectRequest) (dto.StudentStatusResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentStatusResponse{}, WrapError(CodeValidation, "invalid rejection payload", err)
	}

	reason := strings.TrimSpace(s.sanitizer.Sanitize(payload.Reason))
	return s.moderateAccount(ctx, actor, studentID, models.StudentStatusRejected, reason)
}

func (s *engagementService) moderateAccount(ctx context.Context, actor authz.Actor, studentID uint, status, reason string) (dto.StudentStatusResponse, error) {
	if studentID == 0 {
		return dto.StudentStatusResponse{}, NewError(CodeValidation, "student id is required")
	}
	if actor.Role != authz.RoleAdmin {
		return dto.StudentStatusResponse{}, NewError(CodeForbidden, "only admins may moderate accounts")
	}

	ctx, span := s.tracer.Start(ctx, "engagement.moderate_account", trace.WithAttributes(
		attribute.Int("student.id", int(studentID)),
		attribute.String("status", status),
	))
	defer span.End()

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return dto.StudentStatusResponse{}, translateLookup(err, "student not found")
	}

	if student.Status != models.StudentStatusPending {
		return dto.StudentStatusResponse{}, NewError(CodeConflict,
			fmt.Sprintf("account is %s, only pending accounts can be moderated", student.Status))
	}

	updated, err := s.students.UpdateStatus(ctx, studentID, status)
	if err != nil {
		return dto.StudentStatusResponse{}, WrapError(CodeInternal, "failed to update account status", err)
	}

	approved := status == models.StudentStatusApproved
	title := "Your account has been approved"
	body := fmt.Sprintf("Welcome, %s! Your account is now active.", student.Name)
	kind := notification.KindWelcome
	if !approved {
		title = "Your account was not approved"
		body = fmt.Sprintf("Sorry %s, your registration was rejected.", student.Name)
		if reason != "" {
			body = fmt.Sprintf("%s Reason: %s", body, reason)
		}
		kind = notification.KindSystem
	}

	s.insert(student.Email, notification.Message{
		Title:    title,
		Body:     body,
		Kind:     kind,
		Metadata: map[string]interface{}{"status": status},
	})

	if s.activity != nil {
		entityID := student.ID
		entry := ActivityEntry{
			Actor:      actor,
			Action:     "account_" + status,
			EntityType: "student",
			EntityID:   &entityID,
			Metadata:   map[string]interface{}{"reason": reason},
		}
		if err := s.activity.Record(ctx, entry); err != nil {
			s.logger.Warn().Err(err).Msg("failed to record moderation activity")
		}
	}

	s.dispatchEmail(moderationEmail(student, approved, reason))

	return dto.StudentStatusResponse{StudentID: updated.ID, Status: updated.Status}, nil
}

func (s *engagementService) RecordStudentAdded(ctx context.Context, actor authz.Actor, payload dto.StudentAddedRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return WrapError(CodeValidation, "invalid student added payload", err)
	}
	if actor.Identity == "" {
		return NewError(CodeUnauthorized, "actor identity is required")
	}

	student, err := s.students.GetByID(ctx, payload.StudentID)
	if err != nil {
		return translateLookup(err, "student not found")
	}

	s.insert(actor.Identity, notification.Message{
		Title:    fmt.Sprintf("%s joined your family account", student.Name),
		Body:     fmt.Sprintf("You added %s. Their learning progress will show up here.", student.Name),
		Kind:     notification.KindStudentAdded,
		Metadata: map[string]interface{}{"student_id": student.ID},
	})

	return nil
}

func (s *engagementService) CheckAttendance(ctx context.Context, actor authz.Actor, payload dto.AttendanceCheckRequest) (dto.AttendanceReport, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AttendanceReport{}, WrapError(CodeValidation, "invalid attendance check payload", err)
	}
	if !actor.Role.IsStaff() {
		return dto.AttendanceReport{}, NewError(CodeForbidden, "only staff may run attendance checks")
	}

	ctx, span := s.tracer.Start(ctx, "engagement.check_attendance", trace.WithAttributes(
		attribute.Int("class.id", int(payload.ClassID)),
		attribute.Bool("notify_parents", payload.NotifyParents),
	))
	defer span.End()

	class, err := s.bookings.GetClass(ctx, payload.ClassID)
	if err != nil {
		return dto.AttendanceReport{}, translateLookup(err, "class not found")
	}

	bookings, err := s.bookings.ListByClass(ctx, class.ID)
	if err != nil {
		return dto.AttendanceReport{}, WrapError(CodeInternal, "failed to load class bookings", err)
	}

	report := dto.AttendanceReport{
		ClassID: class.ID,
		Online:  []dto.AttendanceStudent{},
		Offline: []dto.AttendanceStudent{},
	}
	var offline []models.Student

	for _, booking := range bookings {
		entry := dto.AttendanceStudent{StudentID: booking.StudentID, Name: booking.Student.Name}
		if s.tracker.IsOnline(s.lastSeen(ctx, booking.Student)) {
			report.Online = append(report.Online, entry)
		} else {
			report.Offline = append(report.Offline, entry)
			offline = append(offline, booking.Student)
		}
	}

	names := make([]string, 0, len(offline))
	for _, student := range offline {
		names = append(names, student.Name)
	}
	summary := fmt.Sprintf("All %d booked students are online.", len(bookings))
	if len(offline) > 0 {
		summary = fmt.Sprintf("%d of %d booked students are offline: %s.",
			len(offline), len(bookings), strings.Join(names, ", "))
	}

	s.insert(actor.Identity, notification.Message{
		Title:    fmt.Sprintf("Attendance check for %q", class.Title),
		Body:     summary,
		Kind:     notification.KindAttendanceAlert,
		Metadata: map[string]interface{}{"class_id": class.ID, "offline": len(offline)},
	})

	if payload.NotifyParents {
		for _, student := range offline {
			recipient, err := s.parentRecipient(ctx, student)
			if err != nil || recipient == "" {
				// Unlinked students are skipped silently; the instructor
				// summary already names them.
				continue
			}
			s.insert(recipient, notification.Message{
				Title:    fmt.Sprintf("%s is missing class", student.Name),
				Body:     fmt.Sprintf("%s has not joined %q yet.", student.Name, class.Title),
				Kind:     notification.KindClassReminder,
				Metadata: map[string]interface{}{"class_id": class.ID, "student_id": student.ID},
			})
			report.ParentReminders++
		}
	}

	return report, nil
}

func (s *engagementService) RecordHeartbeat(ctx context.Context, payload dto.HeartbeatRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return WrapError(CodeValidation, "invalid heartbeat payload", err)
	}

	now := time.Now().UTC()
	if s.presenceStore != nil {
		if err := s.presenceStore.Touch(ctx, payload.StudentID, now); err != nil {
			return WrapError(CodeInternal, "failed to record heartbeat", err)
		}
	}
	if err := s.students.TouchLastSeen(ctx, payload.StudentID, now); err != nil {
		return WrapError(CodeInternal, "failed to persist last seen", err)
	}
	return nil
}

// authorize translates resolver errors into coded errors.
func (s *engagementService) authorize(ctx context.Context, actor authz.Actor, studentID uint) error {
	err := s.resolver.CanMutateStudent(ctx, actor, studentID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, authz.ErrLinkageNotFound):
		return WrapError(CodeNotFound, "student linkage not found", err)
	case errors.Is(err, authz.ErrForbidden):
		return WrapError(CodeForbidden, "actor may not mutate this student", err)
	default:
		return WrapError(CodeInternal, "authorization lookup failed", err)
	}
}

// parentRecipient resolves the notification address for a student's
// guardian: the legacy parent email when present, otherwise the linked
// guardian profile's email. Returns "" when neither path resolves.
func (s *engagementService) parentRecipient(ctx context.Context, student models.Student) (string, error) {
	if email := strings.TrimSpace(student.ParentEmail); email != "" {
		return strings.ToLower(email), nil
	}
	if student.GuardianID == nil {
		return "", nil
	}

	parent, err := s.parents.GetByID(ctx, *student.GuardianID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", WrapError(CodeInternal, "failed to resolve guardian profile", err)
	}
	return strings.ToLower(parent.Email), nil
}

// lastSeen prefers the live heartbeat over the persisted timestamp.
func (s *engagementService) lastSeen(ctx context.Context, student models.Student) *time.Time {
	if s.presenceStore != nil {
		seenAt, err := s.presenceStore.LastSeen(ctx, student.ID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("student_id", student.ID).Msg("presence lookup failed, using persisted last seen")
		} else if seenAt != nil {
			return seenAt
		}
	}
	return student.LastSeenAt
}

// insert writes to the notification store without ever failing the caller.
func (s *engagementService) insert(recipient string, msg notification.Message) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Error().Interface("panic", recovered).Str("recipient", recipient).Msg("notification insert failed")
		}
	}()

	s.store.Insert(recipient, msg)
	observability.NotificationsInserted().WithLabelValues(msg.Kind).Inc()
}

// dispatchEmail spawns a fire-and-forget delivery. Failures are logged and
// counted, never propagated to the triggering request.
func (s *engagementService) dispatchEmail(email mailer.Email) {
	if s.mailer == nil || email.To == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emailDispatchTimeout)
		defer cancel()

		if err := s.mailer.Send(ctx, email); err != nil {
			observability.EmailDispatches().WithLabelValues("failure").Inc()
			s.logger.Warn().Err(err).Str("to", email.To).Msg("email delivery failed")
			return
		}
		observability.EmailDispatches().WithLabelValues("success").Inc()
	}()
}

func translateLookup(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return WrapError(CodeNotFound, message, err)
	}
	return WrapError(CodeInternal, message, err)
}
