package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edupulse/engage-api/internal/authz"
	"github.com/edupulse/engage-api/internal/dto"
	"github.com/edupulse/engage-api/internal/models"
	"github.com/edupulse/engage-api/internal/notification"
	"github.com/edupulse/engage-api/internal/repository"
	"github.com/edupulse/engage-api/pkg/mailer"
)

type captureMailer struct {
	sent chan mailer.Email
}

func (m *captureMailer) Send(_ context.Context, email mailer.Email) error {
	m.sent <- email
	return nil
}

type engagementFixture struct {
	svc   EngagementService
	store *notification.Store
	db    *gorm.DB
	mail  *captureMailer
}

func newEngagementFixture(t *testing.T) *engagementFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.ParentProfile{},
		&models.Lesson{},
		&models.LessonCompletion{},
		&models.ClassSession{},
		&models.ClassBooking{},
		&models.ActivityLog{},
	))

	store := notification.NewStore()
	mail := &captureMailer{sent: make(chan mailer.Email, 4)}
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.Nop()

	svc := NewEngagementService(EngagementDeps{
		Students: repository.NewStudentRepository(db),
		Lessons:  repository.NewLessonRepository(db),
		Bookings: repository.NewBookingRepository(db),
		Parents:  repository.NewParentRepository(db),
		Resolver: authz.NewResolver(repository.NewDirectory(db)),
		Store:    store,
		Mailer:   mail,
		Activity: NewActivityService(repository.NewActivityLogRepository(db), logger),
	}, validate, logger)

	return &engagementFixture{svc: svc, store: store, db: db, mail: mail}
}

func (f *engagementFixture) seedStudent(t *testing.T, student models.Student) models.Student {
	t.Helper()
	require.NoError(t, f.db.Create(&student).Error)
	return student
}

func intPointer(v int) *int {
	return &v
}

func TestCompleteLessonLevelUpNotifiesParent(t *testing.T) {
	f := newEngagementFixture(t)

	student := f.seedStudent(t, models.Student{
		Name: "Ada", Email: "ada@x.com", Status: models.StudentStatusApproved,
		TotalXP: 450, CurrentLevel: 1, ParentEmail: "p@x.com",
	})
	lesson := models.Lesson{Title: "Fractions", XPReward: intPointer(60)}
	require.NoError(t, f.db.Create(&lesson).Error)

	actor := authz.NewActor("parent", "p@x.com")
	resp, err := f.svc.CompleteLesson(context.Background(), actor, dto.LessonCompletedRequest{
		StudentID: student.ID,
		LessonID:  lesson.ID,
	})
	require.NoError(t, err)
	require.Equal(t, 510, resp.TotalXP)
	require.Equal(t, 2, resp.CurrentLevel)
	require.True(t, resp.LeveledUp)
	require.Equal(t, 60, resp.XPAwarded)

	var persisted models.Student
	require.NoError(t, f.db.First(&persisted, student.ID).Error)
	require.Equal(t, 510, persisted.TotalXP)
	require.Equal(t, 2, persisted.CurrentLevel)

	records := f.store.List("p@x.com", notification.ListOptions{})
	require.Len(t, records, 1)
	require.Equal(t, notification.KindAchievement, records[0].Kind)
}

func TestCompleteLessonNotableRewardNotifiesProgress(t *testing.T) {
	f := newEngagementFixture(t)

	student := f.seedStudent(t, models.Student{
		Name: "Ben", Email: "ben@x.com", Status: models.StudentStatusApproved,
		TotalXP: 0, CurrentLevel: 1, ParentEmail: "p2@x.com",
	})
	lesson := models.Lesson{Title: "Big quiz", XPReward: intPointer(100)}
	require.NoError(t, f.db.Create(&lesson).Error)

	_, err := f.svc.CompleteLesson(context.Background(), authz.NewActor("instructor", "t@x.com"), dto.LessonCompletedRequest{
		StudentID: student.ID,
		LessonID:  lesson.ID,
	})
	require.NoError(t, err)

	records := f.store.List("p2@x.com", notification.ListOptions{})
	require.Len(t, records, 1)
	require.Equal(t, notification.KindProgress, records[0].Kind)
}

func TestCompleteLessonSmallRewardStaysQuiet(t *testing.T) {
	f := newEngagementFixture(t)

	student := f.seedStudent(t, models.Student{
		Name: "Cleo", Email: "cleo@x.com", Status: models.StudentStatusApproved,
		TotalXP: 0, CurrentLevel: 1, ParentEmail: "p3@x.com",
	})
	lesson := models.Lesson{Title: "Warmup", XPReward: intPointer(10)}
	require.NoError(t, f.db.Create(&lesson).Error)

	_, err := f.svc.CompleteLesson(context.Background(), authz.NewActor("admin", "a@x.com"), dto.LessonCompletedRequest{
		StudentID: student.ID,
		LessonID:  lesson.ID,
	})
	require.NoError(t, err)
	require.Empty(t, f.store.List("p3@x.com", notification.ListOptions{}))
}

func TestCompleteLessonXPHintFallback(t *testing.T) {
	f := newEngagementFixture(t)

	student := f.seedStudent(t, models.Student{
		Name: "Dot", Email: "dot@x.com", Status: models.StudentStatusApproved,
		TotalXP: 0, CurrentLevel: 1, ParentEmail: "p4@x.com",
	})
	lesson := models.Lesson{Title: "Untagged lesson"}
	require.NoError(t, f.db.Create(&lesson).Error)

	resp, err := f.svc.CompleteLesson(context.Background(), authz.NewActor("admin", "a@x.com"), dto.LessonCompletedRequest{
		StudentID: student.ID,
		LessonID:  lesson.ID,
		XPHint:    intPointer(75),
	})
	require.NoError(t, err)
	require.Equal(t, 75, resp.XPAwarded)

	// Without a hint the hard-coded default applies.
	other := f.seedStudent(t, models.Student{
		Name: "Eli", Email: "eli@x.com", Status: models.StudentStatusApproved,
		ParentEmail: "p5@x.com", CurrentLevel: 1,
	})
	resp, err = f.svc.CompleteLesson(context.Background(), authz.NewActor("admin", "a@x.com"), dto.LessonCompletedRequest{
		StudentID: other.ID,
		LessonID:  lesson.ID,
	})
	require.NoError(t, err)
	require.Equal(t, DefaultLessonXP, resp.XPAwarded)
}

func TestCompleteLessonForbiddenActorRecordsNothing(t *testing.T) {
	f := newEngagementFixture(t)

	student := f.seedStudent(t, models.Student{
		Name: "Fay", Email: "fay@x.com", Status: models.StudentStatusApproved,
		TotalXP: 200, CurrentLevel: 1, ParentEmail: "real-parent@x.com",
	})
	lesson := models.Lesson{Title: "History", XPReward: intPointer(40)}
	require.NoError(t, f.db.Create(&lesson).Error)

	_, err := f.svc.CompleteLesson(context.Background(), authz.NewActor("parent", "stranger@x.com"), dto.LessonCompletedRequest{
		StudentID: student.ID,
		LessonID:  lesson.ID,
	})
	require.Error(t, err)
	require.Equal(t, CodeForbidden, CodeOf(err))

	var persisted models.Student
	require.NoError(t, f.db.First(&persisted, student.ID).Error)
	require.Equal(t, 200, persisted.TotalXP)
	require.Empty(t, f.store.List("real-parent@x.com", notification.ListOptions{}))
}

func TestCompleteLessonDuplicateIsConflict(t *testing.T) {
	f := newEngagementFixture(t)

	student := f.seedStudent(t, models.Student{
		Name: "Gus", Email: "gus@x.com", Status: models.StudentStatusApproved,
		CurrentLevel: 1, ParentEmail: "p6@x.com",
	})
	lesson := models.Lesson{Title: "Repeatable?", XPReward: intPointer(30)}
	require.NoError(t, f.db.Create(&lesson).Error)

	actor := authz.NewActor("admin", "a@x.com")
	payload := dto.LessonCompletedRequest{StudentID: student.ID, LessonID: lesson.ID}

	_, err := f.svc.CompleteLesson(context.Background(), actor, payload)
	require.NoError(t, err)

	_, err = f.svc.CompleteLesson(context.Background(), actor, payload)
	require.Error(t, err)
	require.Equal(t, CodeConflict, CodeOf(err))

	var persisted models.Student
	require.NoError(t, f.db.First(&persisted, student.ID).Error)
	require.Equal(t, 30, persisted.TotalXP)
}

func TestCompleteLessonUnknownStudentIsNotFound(t *testing.T) {
	f := newEngagementFixture(t)

	_, err := f.svc.CompleteLesson(context.Background(), authz.NewActor("parent", "p@x.com"), dto.LessonCompletedRequest{
		StudentID: 999,
		LessonID:  1,
	})
	require.Error(t, err)
	require.Equal(t, CodeNotFound, CodeOf(err))
}

func TestApproveAccountFlow(t *testing.T) {
	f := newEngagementFixture(t)

	student := f.seedStudent(t, models.Student{
		Name: "Hana", Email: "hana@x.com", Status: models.StudentStatusPending, CurrentLevel: 1,
	})

	admin := authz.NewActor("admin", "mod@x.com")
	resp, err := f.svc.ApproveAccount(context.Background(), admin, student.ID)
	require.NoError(t, err)
	require.Equal(t, models.StudentStatusApproved, resp.Status)

	records := f.store.List("hana@x.com", notification.ListOptions{})
	require.Len(t, records, 1)
	require.Equal(t, notification.KindWelcome, records[0].Kind)

	select {
	case email := <-f.mail.sent:
		require.Equal(t, "hana@x.com", email.To)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an approval email dispatch")
	}

	var logs []models.ActivityLog
	require.NoError(t, f.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, "account_approved", logs[0].Action)

	// Approving again conflicts: the account is no longer pending.
	_, err = f.svc.ApproveAccount(context.Background(), admin, student.ID)
	require.Error(t, err)
	require.Equal(t, CodeConflict, CodeOf(err))
}

func TestRejectAccountRequiresAdmin(t *testing.T) {
	f := newEngagementFixture(t)

	student := f.seedStudent(t, models.Student{
		Name: "Ivo", Email: "ivo@x.com", Status: models.StudentStatusPending, CurrentLevel: 1,
	})

	_, err := f.svc.RejectAccount(context.Background(), authz.NewActor("instructor", "t@x.com"), student.ID, dto.AccountRejectRequest{})
	require.Error(t, err)
	require.Equal(t, CodeForbidden, CodeOf(err))

	resp, err := f.svc.RejectAccount(context.Background(), authz.NewActor("admin", "mod@x.com"), student.ID, dto.AccountRejectRequest{
		Reason: "incomplete registration",
	})
	require.NoError(t, err)
	require.Equal(t, models.StudentStatusRejected, resp.Status)
	require.Len(t, f.store.List("ivo@x.com", notification.ListOptions{}), 1)
}

func TestRecordStudentAddedNotifiesActingParent(t *testing.T) {
	f := newEngagementFixture(t)

	student := f.seedStudent(t, models.Student{
		Name: "Juno", Email: "juno@x.com", Status: models.StudentStatusApproved,
		CurrentLevel: 1, ParentEmail: "parent@x.com",
	})

	err := f.svc.RecordStudentAdded(context.Background(), authz.NewActor("parent", "parent@x.com"), dto.StudentAddedRequest{
		StudentID: student.ID,
	})
	require.NoError(t, err)

	records := f.store.List("parent@x.com", notification.ListOptions{})
	require.Len(t, records, 1)
	require.Equal(t, notification.KindStudentAdded, records[0].Kind)
}

func TestCheckAttendancePartitionsAndNotifies(t *testing.T) {
	f := newEngagementFixture(t)

	now := time.Now().UTC()
	hourAgo := now.Add(-time.Hour)

	online1 := f.seedStudent(t, models.Student{
		Name: "Kim", Email: "kim@x.com", Status: models.StudentStatusApproved,
		CurrentLevel: 1, ParentEmail: "kim-parent@x.com", LastSeenAt: &now,
	})
	online2 := f.seedStudent(t, models.Student{
		Name: "Lev", Email: "lev@x.com", Status: models.StudentStatusApproved,
		CurrentLevel: 1, ParentEmail: "lev-parent@x.com", LastSeenAt: &now,
	})
	offline := f.seedStudent(t, models.Student{
		Name: "Mia", Email: "mia@x.com", Status: models.StudentStatusApproved,
		CurrentLevel: 1, ParentEmail: "mia-parent@x.com", LastSeenAt: &hourAgo,
	})

	bookings := repository.NewBookingRepository(f.db)
	class := models.ClassSession{Title: "Algebra", InstructorID: 5}
	require.NoError(t, bookings.CreateClass(context.Background(), &class))
	for _, student := range []models.Student{online1, online2, offline} {
		require.NoError(t, bookings.CreateBooking(context.Background(), &models.ClassBooking{ClassID: class.ID, StudentID: student.ID}))
	}

	instructor := authz.NewActor("instructor", "teach@x.com")
	report, err := f.svc.CheckAttendance(context.Background(), instructor, dto.AttendanceCheckRequest{
		ClassID:       class.ID,
		NotifyParents: true,
	})
	require.NoError(t, err)
	require.Len(t, report.Online, 2)
	require.Len(t, report.Offline, 1)
	require.Equal(t, "Mia", report.Offline[0].Name)
	require.Equal(t, 1, report.ParentReminders)

	instructorFeed := f.store.List("teach@x.com", notification.ListOptions{})
	require.Len(t, instructorFeed, 1)
	require.Equal(t, notification.KindAttendanceAlert, instructorFeed[0].Kind)

	parentFeed := f.store.List("mia-parent@x.com", notification.ListOptions{})
	require.Len(t, parentFeed, 1)
	require.Equal(t, notification.KindClassReminder, parentFeed[0].Kind)

	require.Empty(t, f.store.List("kim-parent@x.com", notification.ListOptions{}))
}

func TestCheckAttendanceSkipsUnlinkedParentSilently(t *testing.T) {
	f := newEngagementFixture(t)

	hourAgo := time.Now().UTC().Add(-time.Hour)
	orphan := f.seedStudent(t, models.Student{
		Name: "Nil", Email: "nil@x.com", Status: models.StudentStatusApproved,
		CurrentLevel: 1, LastSeenAt: &hourAgo,
	})

	class := models.ClassSession{Title: "Biology"}
	require.NoError(t, f.db.Create(&class).Error)
	require.NoError(t, f.db.Create(&models.ClassBooking{ClassID: class.ID, StudentID: orphan.ID}).Error)

	report, err := f.svc.CheckAttendance(context.Background(), authz.NewActor("instructor", "teach@x.com"), dto.AttendanceCheckRequest{
		ClassID:       class.ID,
		NotifyParents: true,
	})
	require.NoError(t, err)
	require.Len(t, report.Offline, 1)
	require.Equal(t, 0, report.ParentReminders)
	require.Len(t, f.store.List("teach@x.com", notification.ListOptions{}), 1)
}

func TestCheckAttendanceForbiddenForParents(t *testing.T) {
	f := newEngagementFixture(t)

	_, err := f.svc.CheckAttendance(context.Background(), authz.NewActor("parent", "p@x.com"), dto.AttendanceCheckRequest{ClassID: 1})
	require.Error(t, err)
	require.Equal(t, CodeForbidden, CodeOf(err))
}

func TestGuardianLinkResolvesRecipient(t *testing.T) {
	f := newEngagementFixture(t)

	guardian := models.ParentProfile{Name: "Pat", Email: "Guardian@X.com"}
	require.NoError(t, repository.NewParentRepository(f.db).Create(context.Background(), &guardian))

	student := f.seedStudent(t, models.Student{
		Name: "Oni", Email: "oni@x.com", Status: models.StudentStatusApproved,
		CurrentLevel: 1, GuardianID: &guardian.ID, TotalXP: 480,
	})
	lesson := models.Lesson{Title: "Chemistry", XPReward: intPointer(50)}
	require.NoError(t, f.db.Create(&lesson).Error)

	_, err := f.svc.CompleteLesson(context.Background(), authz.NewActor("guardian", ""), dto.LessonCompletedRequest{
		StudentID: student.ID,
		LessonID:  lesson.ID,
	})
	// Unknown role normalizes to a non-staff actor without identity.
	require.Error(t, err)

	resp, err := f.svc.CompleteLesson(context.Background(), authz.NewActor("admin", "a@x.com"), dto.LessonCompletedRequest{
		StudentID: student.ID,
		LessonID:  lesson.ID,
	})
	require.NoError(t, err)
	require.True(t, resp.LeveledUp)

	records := f.store.List("guardian@x.com", notification.ListOptions{})
	require.Len(t, records, 1)
	require.Equal(t, notification.KindAchievement, records[0].Kind)
}

func TestCompleteLessonWithoutParentRecipientRejected(t *testing.T) {
	f := newEngagementFixture(t)

	student := f.seedStudent(t, models.Student{
		Name: "Quin", Email: "quin@x.com", Status: models.StudentStatusApproved, CurrentLevel: 1,
	})
	lesson := models.Lesson{Title: "Art", XPReward: intPointer(20)}
	require.NoError(t, f.db.Create(&lesson).Error)

	_, err := f.svc.CompleteLesson(context.Background(), authz.NewActor("admin", "a@x.com"), dto.LessonCompletedRequest{
		StudentID: student.ID,
		LessonID:  lesson.ID,
	})
	require.Error(t, err)
	require.Equal(t, CodeValidation, CodeOf(err))

	var count int64
	require.NoError(t, f.db.Model(&models.LessonCompletion{}).Count(&count).Error)
	require.Zero(t, count)
}
