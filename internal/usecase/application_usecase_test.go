package usecase_test

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"skillmatch-backend/internal/domain"
	"skillmatch-backend/internal/usecase"
	"skillmatch-backend/pkg/apperror"
)

type applicationDeps struct {
	apps     *MockApplicationRepo
	jobs     *MockJobRepo
	storage  *MockStorage
	mailer   *MockMailer
	notifier *MockNotifier
	uc       domain.ApplicationUsecase
}

func newApplicationDeps() applicationDeps {
	d := applicationDeps{
		apps:     new(MockApplicationRepo),
		jobs:     new(MockJobRepo),
		storage:  new(MockStorage),
		mailer:   new(MockMailer),
		notifier: new(MockNotifier),
	}
	d.uc = usecase.NewApplicationUsecase(d.apps, d.jobs, d.storage, d.mailer, d.notifier)
	return d
}

var (
	candidate = domain.Actor{UserID: "cand-1", Role: domain.RoleCandidate}
	recruiter = domain.Actor{UserID: "rec-1", Role: domain.RoleRecruiter}
	testJob   = &domain.Job{ID: 10, RecruiterID: "rec-1", Title: "Backend Engineer", Company: "Acme"}
)

func resumeUpload() *domain.Upload {
	return &domain.Upload{Filename: "cv.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4\nnot a real pdf")}
}

func docxResume(t *testing.T, text string) *domain.Upload {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"word/document.xml":            "<w:document><w:body><w:t>" + text + "</w:t></w:body></w:document>",
		"word/_rels/document.xml.rels": "<Relationships/>",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return &domain.Upload{Filename: "cv.docx", Data: buf.Bytes()}
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("Recruiters cannot apply", func(t *testing.T) {
		d := newApplicationDeps()
		_, err := d.uc.Apply(ctx, recruiter, 10, domain.ApplyInput{Resume: resumeUpload()})
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})

	t.Run("Resume validation happens before any lookup", func(t *testing.T) {
		cases := map[string]*domain.Upload{
			"missing": nil,
			"txt":     {Filename: "cv.txt", Data: []byte("hello")},
			"spoofed": {Filename: "cv.pdf", Data: []byte("PK\x03\x04zip")},
		}
		for name, upload := range cases {
			d := newApplicationDeps()
			_, err := d.uc.Apply(ctx, candidate, 10, domain.ApplyInput{Resume: upload})
			assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err), name)
			d.jobs.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		}
	})

	t.Run("Optional field too long", func(t *testing.T) {
		d := newApplicationDeps()
		_, err := d.uc.Apply(ctx, candidate, 10, domain.ApplyInput{
			Resume:       resumeUpload(),
			NoticePeriod: strings.Repeat("x", 101),
		})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("Unknown job", func(t *testing.T) {
		d := newApplicationDeps()
		d.jobs.On("GetByID", ctx, int64(99)).Return(nil, domain.ErrNotFound)

		_, err := d.uc.Apply(ctx, candidate, 99, domain.ApplyInput{Resume: resumeUpload()})
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	})

	t.Run("Duplicate application is a conflict", func(t *testing.T) {
		d := newApplicationDeps()
		d.jobs.On("GetByID", ctx, int64(10)).Return(testJob, nil)
		d.apps.On("CheckExists", ctx, int64(10), "cand-1").Return(true, nil)

		_, err := d.uc.Apply(ctx, candidate, 10, domain.ApplyInput{Resume: resumeUpload()})
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
		d.storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Concurrent duplicate caught by the insert", func(t *testing.T) {
		d := newApplicationDeps()
		d.jobs.On("GetByID", ctx, int64(10)).Return(testJob, nil)
		d.apps.On("CheckExists", ctx, int64(10), "cand-1").Return(false, nil)
		d.storage.On("Save", ctx, domain.FileCategoryResume, "cv.pdf", mock.Anything).Return("resume/x.pdf", nil)
		d.apps.On("Create", ctx, mock.Anything).Return(domain.ErrConflict)

		_, err := d.uc.Apply(ctx, candidate, 10, domain.ApplyInput{Resume: resumeUpload()})
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	})

	t.Run("Resume text with NUL bytes still applies", func(t *testing.T) {
		d := newApplicationDeps()
		d.jobs.On("GetByID", ctx, int64(10)).Return(testJob, nil)
		d.apps.On("CheckExists", ctx, int64(10), "cand-1").Return(false, nil)
		d.storage.On("Save", ctx, domain.FileCategoryResume, "cv.docx", mock.Anything).Return("resume/x.docx", nil)
		d.apps.On("Create", ctx, mock.MatchedBy(func(a *domain.Application) bool {
			return a.ResumeExcerpt != nil &&
				!strings.ContainsRune(*a.ResumeExcerpt, 0) &&
				utf8.ValidString(*a.ResumeExcerpt) &&
				strings.HasPrefix(*a.ResumeExcerpt, "Go dev")
		})).Return(nil)

		app, err := d.uc.Apply(ctx, candidate, 10, domain.ApplyInput{Resume: docxResume(t, "Go dev\x00 \xff\xfe skills")})
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationPending, app.Status)
		d.apps.AssertExpectations(t)
	})

	t.Run("Success", func(t *testing.T) {
		d := newApplicationDeps()
		d.jobs.On("GetByID", ctx, int64(10)).Return(testJob, nil)
		d.apps.On("CheckExists", ctx, int64(10), "cand-1").Return(false, nil)
		d.storage.On("Save", ctx, domain.FileCategoryResume, "cv.pdf", mock.Anything).Return("resume/x.pdf", nil)
		d.apps.On("Create", ctx, mock.MatchedBy(func(a *domain.Application) bool {
			return a.Status == domain.ApplicationPending && a.ResumePath == "resume/x.pdf" && a.CandidateID == "cand-1"
		})).Return(nil)

		app, err := d.uc.Apply(ctx, candidate, 10, domain.ApplyInput{
			Resume:         resumeUpload(),
			ExpectedSalary: " 120k ",
		})
		require.NoError(t, err)
		assert.Equal(t, "120k", *app.ExpectedSalary)
		assert.Nil(t, app.NoticePeriod)
		assert.Equal(t, "Backend Engineer", *app.JobTitle)
		d.apps.AssertExpectations(t)
	})
}

func TestUpdateApplicationStatus(t *testing.T) {
	ctx := context.Background()
	email := "cand@example.com"
	name := "Casey"

	pending := func() *domain.Application {
		return &domain.Application{
			ID: 1, JobID: 10, CandidateID: "cand-1", Status: domain.ApplicationPending,
			CandidateEmail: &email, CandidateName: &name,
		}
	}

	t.Run("Email failure does not undo the decision", func(t *testing.T) {
		d := newApplicationDeps()
		d.apps.On("GetByID", ctx, int64(1)).Return(pending(), nil)
		d.jobs.On("GetByID", ctx, int64(10)).Return(testJob, nil)
		d.apps.On("UpdateStatus", ctx, int64(1), domain.ApplicationAccepted).Return(nil)
		d.mailer.On("Send", ctx, mock.MatchedBy(func(m domain.EmailMessage) bool {
			return m.To == email && m.Template == domain.EmailApplicationAccepted && m.Data["job_title"] == "Backend Engineer"
		})).Return(assert.AnError)
		d.notifier.On("Emit", ctx, "cand-1", domain.NotificationApplicationStatus,
			"Your application for Backend Engineer at Acme was accepted").Return(nil)

		app, err := d.uc.UpdateStatus(ctx, recruiter, 1, domain.ApplicationAccepted)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationAccepted, app.Status)
		d.mailer.AssertExpectations(t)
		d.notifier.AssertExpectations(t)
	})

	t.Run("Rejection uses the rejection template", func(t *testing.T) {
		d := newApplicationDeps()
		d.apps.On("GetByID", ctx, int64(1)).Return(pending(), nil)
		d.jobs.On("GetByID", ctx, int64(10)).Return(testJob, nil)
		d.apps.On("UpdateStatus", ctx, int64(1), domain.ApplicationRejected).Return(nil)
		d.mailer.On("Send", ctx, mock.MatchedBy(func(m domain.EmailMessage) bool {
			return m.Template == domain.EmailApplicationRejected
		})).Return(nil)
		d.notifier.On("Emit", ctx, "cand-1", domain.NotificationApplicationStatus, mock.Anything).Return(assert.AnError)

		app, err := d.uc.UpdateStatus(ctx, recruiter, 1, domain.ApplicationRejected)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationRejected, app.Status)
	})

	t.Run("Already decided is a conflict", func(t *testing.T) {
		d := newApplicationDeps()
		decided := pending()
		decided.Status = domain.ApplicationRejected
		d.apps.On("GetByID", ctx, int64(1)).Return(decided, nil)
		d.jobs.On("GetByID", ctx, int64(10)).Return(testJob, nil)

		_, err := d.uc.UpdateStatus(ctx, recruiter, 1, domain.ApplicationAccepted)
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
		d.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Lost race on the conditional update", func(t *testing.T) {
		d := newApplicationDeps()
		d.apps.On("GetByID", ctx, int64(1)).Return(pending(), nil)
		d.jobs.On("GetByID", ctx, int64(10)).Return(testJob, nil)
		d.apps.On("UpdateStatus", ctx, int64(1), domain.ApplicationAccepted).Return(domain.ErrConflict)

		_, err := d.uc.UpdateStatus(ctx, recruiter, 1, domain.ApplicationAccepted)
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	})

	t.Run("Only the job owner decides", func(t *testing.T) {
		d := newApplicationDeps()
		d.apps.On("GetByID", ctx, int64(1)).Return(pending(), nil)
		d.jobs.On("GetByID", ctx, int64(10)).Return(testJob, nil)

		_, err := d.uc.UpdateStatus(ctx, domain.Actor{UserID: "rec-2", Role: domain.RoleRecruiter}, 1, domain.ApplicationAccepted)
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})

	t.Run("PENDING is not a valid target", func(t *testing.T) {
		d := newApplicationDeps()
		d.apps.On("GetByID", ctx, int64(1)).Return(pending(), nil)
		d.jobs.On("GetByID", ctx, int64(10)).Return(testJob, nil)

		_, err := d.uc.UpdateStatus(ctx, recruiter, 1, domain.ApplicationPending)
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("Unknown application", func(t *testing.T) {
		d := newApplicationDeps()
		d.apps.On("GetByID", ctx, int64(2)).Return(nil, domain.ErrNotFound)

		_, err := d.uc.UpdateStatus(ctx, recruiter, 2, domain.ApplicationAccepted)
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	})
}

func TestApplicationQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("MyApplications is candidate only", func(t *testing.T) {
		d := newApplicationDeps()
		_, err := d.uc.MyApplications(ctx, recruiter)
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})

	t.Run("ListByJob requires ownership", func(t *testing.T) {
		d := newApplicationDeps()
		d.jobs.On("GetByID", ctx, int64(10)).Return(testJob, nil)
		d.apps.On("GetByJobID", ctx, int64(10)).Return([]domain.Application{{ID: 1}}, nil)

		_, err := d.uc.ListByJob(ctx, domain.Actor{UserID: "rec-2", Role: domain.RoleRecruiter}, 10)
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))

		apps, err := d.uc.ListByJob(ctx, recruiter, 10)
		require.NoError(t, err)
		assert.Len(t, apps, 1)
	})

	t.Run("AppliedJobIDs", func(t *testing.T) {
		d := newApplicationDeps()
		d.apps.On("SavedJobIDs", ctx, "cand-1").Return([]int64{10, 12}, nil)

		ids, err := d.uc.AppliedJobIDs(ctx, candidate)
		require.NoError(t, err)
		assert.Equal(t, []int64{10, 12}, ids)
	})
}

func TestExportApplications(t *testing.T) {
	ctx := context.Background()
	d := newApplicationDeps()
	name, email, salary := "Casey", "cand@example.com", "100k"
	d.jobs.On("GetByID", ctx, int64(10)).Return(testJob, nil)
	d.apps.On("GetByJobID", ctx, int64(10)).Return([]domain.Application{
		{ID: 1, Status: domain.ApplicationPending, CandidateName: &name, CandidateEmail: &email, ExpectedSalary: &salary},
	}, nil)

	data, filename, err := d.uc.ExportApplications(ctx, recruiter, 10)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "applications_job_10_"))
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Applications")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CANDIDATE", rows[0][0])
	assert.Equal(t, []string{"Casey", "cand@example.com", "PENDING", "100k"}, rows[1][:4])
}
