package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/student-portal/internal/events"
	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/validator"
)

func newQueryFixture() (QueryService, *mockRepository, *events.MockEventPublisher) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewQueryService(repo, NewActivityService(repo, testLogger()), publisher, validator.New(), testLogger())
	return svc, repo, publisher
}

func strPtr(s string) *string { return &s }

func TestQueryService_Submit(t *testing.T) {
	svc, repo, publisher := newQueryFixture()
	ctx := context.Background()

	q, err := svc.Submit(ctx, &models.SubmitQueryRequest{
		RollNo:  "22f3277",
		Name:    "Ali",
		Subject: "Quiz 1 marks",
		Message: "My quiz is missing",
	}, "ua")
	require.NoError(t, err)

	assert.NotEmpty(t, q.ID)
	assert.Equal(t, "22F-3277", q.RollNo)
	assert.Equal(t, models.QueryStatusOpen, q.Status)
	assert.Equal(t, []string{"Unknown"}, []string(q.Courses))
	assert.False(t, q.HasUnreadResponse)
	assert.Nil(t, q.AdminResponse)

	assert.Equal(t, []models.ActivityType{models.ActivityQuerySubmit}, repo.activity.types())
	assert.Len(t, publisher.EventsOfType(events.QuerySubmitted), 1)
}

func TestQueryService_SubmitFillsFromStudentRecord(t *testing.T) {
	svc, repo, _ := newQueryFixture()
	repo.students.items["22F-3277"] = &models.Student{RollNo: "22F-3277", Name: "Ali Khan", Email: studentEmail, Courses: []string{"PF"}}

	q, err := svc.Submit(context.Background(), &models.SubmitQueryRequest{RollNo: "22F-3277", Subject: "s", Message: "m"}, "")
	require.NoError(t, err)
	assert.Equal(t, "Ali Khan", q.Name)
	assert.Equal(t, studentEmail, q.Email)
	assert.Equal(t, []string{"PF"}, []string(q.Courses))
}

func TestQueryService_SubmitValidation(t *testing.T) {
	svc, repo, _ := newQueryFixture()
	ctx := context.Background()

	cases := []models.SubmitQueryRequest{
		{Subject: "s", Message: "m"},
		{RollNo: "22F-3277", Message: "m"},
		{RollNo: "22F-3277", Subject: "s"},
		{RollNo: "not a roll", Subject: "s", Message: "m"},
	}
	for _, req := range cases {
		_, err := svc.Submit(ctx, &req, "")
		assert.ErrorIs(t, err, ErrValidationFailed)
	}
	assert.Empty(t, repo.queries.items)
}

func TestQueryService_ListNewestFirst(t *testing.T) {
	svc, repo, _ := newQueryFixture()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		repo.queries.items[id] = &models.Query{ID: id, RollNo: "22F-3277", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
	}
	repo.queries.items["d"] = &models.Query{ID: "d", RollNo: "22F-0504", CreatedAt: base.Add(10 * time.Hour)}

	mine, err := svc.ListForStudent(context.Background(), "22F3277")
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, "c", mine[0].ID)
	assert.Equal(t, "a", mine[2].ID)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "d", all[0].ID)
}

func TestQueryService_UpdateAndMarkRead(t *testing.T) {
	svc, repo, publisher := newQueryFixture()
	ctx := context.Background()

	q, err := svc.Submit(ctx, &models.SubmitQueryRequest{RollNo: "22F-3277", Subject: "s", Message: "m"}, "")
	require.NoError(t, err)
	publisher.ClearEvents()

	inProgress := models.QueryStatusInProgress
	updated, err := svc.Update(ctx, q.ID, &models.UpdateQueryRequest{Status: &inProgress, AdminComment: strPtr("checking")}, "")
	require.NoError(t, err)
	assert.Equal(t, models.QueryStatusInProgress, updated.Status)
	assert.False(t, updated.HasUnreadResponse)
	assert.Empty(t, publisher.GetPublishedEvents())

	updated, err = svc.Update(ctx, q.ID, &models.UpdateQueryRequest{AdminResponse: strPtr("Fixed")}, "")
	require.NoError(t, err)
	assert.True(t, updated.HasUnreadResponse)
	assert.Nil(t, updated.ResponseReadAt)
	assert.Equal(t, "checking", *updated.AdminComment)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
	assert.Len(t, publisher.EventsOfType(events.QueryResponded), 1)
	assert.Contains(t, repo.activity.types(), models.ActivityQueryResponse)

	other := &models.User{RollNo: "22F-0504", Role: models.RoleStudent}
	_, err = svc.MarkRead(ctx, q.ID, other)
	assert.ErrorIs(t, err, ErrForbidden)

	owner := &models.User{RollNo: "22f-3277", Role: models.RoleStudent}
	read, err := svc.MarkRead(ctx, q.ID, owner)
	require.NoError(t, err)
	assert.False(t, read.HasUnreadResponse)
	require.NotNil(t, read.ResponseReadAt)

	// An empty response clears the text without flagging it unread
	cleared, err := svc.Update(ctx, q.ID, &models.UpdateQueryRequest{AdminResponse: strPtr("")}, "")
	require.NoError(t, err)
	assert.False(t, cleared.HasUnreadResponse)
	assert.Equal(t, "", *cleared.AdminResponse)
}

func TestQueryService_UpdateErrors(t *testing.T) {
	svc, _, _ := newQueryFixture()
	ctx := context.Background()

	_, err := svc.Update(ctx, "missing", &models.UpdateQueryRequest{}, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(ctx, "", &models.UpdateQueryRequest{}, "")
	assert.ErrorIs(t, err, ErrValidationFailed)

	bogus := models.QueryStatus("archived")
	_, err = svc.Update(ctx, "any", &models.UpdateQueryRequest{Status: &bogus}, "")
	assert.ErrorIs(t, err, ErrValidationFailed)
}
