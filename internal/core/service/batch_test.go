package service_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/service"
	"todoclient/pkg/test"
	"todoclient/pkg/test/factory"
)

type BatchTestSuite struct {
	suite.Suite
}

func TestBatchTestSuite(t *testing.T) {
	RegisterTestingT(t)

	suite.Run(t, new(BatchTestSuite))
}

func completedOf(todos []domain.Todo) []bool {
	out := make([]bool, 0, len(todos))
	for _, t := range todos {
		out = append(out, t.Completed)
	}
	return out
}

func (s *BatchTestSuite) TestToggleAllTargets() {
	tests := []struct {
		name      string
		completed int
		active    int
		expected  int
		toState   bool
	}{
		{"all active flips to completed", 0, 5, 5, true},
		{"all completed flips to active", 5, 0, 5, false},
		{"mixed completes only the active ones", 2, 3, 3, true},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			todos := factory.Todos(userID, tt.completed, tt.active)
			_, completed := service.Counts(todos)

			targets := service.ToggleAllTargets(todos, completed)

			Expect(targets).To(HaveLen(tt.expected))
			for _, t := range targets {
				Expect(t.Completed).To(Equal(tt.toState))
			}
		})
	}

	Expect(service.ToggleAllTargets(nil, 0)).To(BeEmpty())
}

func (s *BatchTestSuite) TestToggleAll_EndState() {
	tests := []struct {
		name      string
		completed int
		active    int
		calls     int
		expected  bool
	}{
		{"0 of 5 completed", 0, 5, 5, true},
		{"5 of 5 completed", 5, 0, 5, false},
		{"2 of 5 completed", 2, 3, 3, true},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			h := newHarness(time.Minute, factory.Todos(userID, tt.completed, tt.active)...)

			result, err := h.session.ToggleAll(ctx)

			Expect(err).To(BeNil())
			Expect(result.Succeeded).To(HaveLen(tt.calls))
			Expect(h.remote.Calls(test.OpUpdate)).To(HaveLen(tt.calls))

			snapshot := h.session.Store().Snapshot()
			Expect(snapshot.Total()).To(Equal(5))
			Expect(completedOf(snapshot.Todos)).To(HaveEach(tt.expected))
			Expect(h.Notices()).To(BeEmpty())
			Expect(h.session.Batch().Busy()).To(BeFalse())
		})
	}
}

func (s *BatchTestSuite) TestToggleAll_PartialFailure() {
	todos := factory.Todos(userID, 0, 4)
	h := newHarness(time.Minute, todos...)
	h.remote.FailOn(test.OpUpdate, todos[1].ID)
	h.remote.FailOn(test.OpUpdate, todos[3].ID)

	result, err := h.session.ToggleAll(ctx)

	Expect(err).To(HaveOccurred())
	var opErr *domain.OperationError
	Expect(errors.As(err, &opErr)).To(BeTrue())
	Expect(opErr.Kind).To(Equal(domain.ToggleError))

	Expect(result.Failed).To(ConsistOf(todos[1].ID, todos[3].ID))
	Expect(result.Succeeded).To(HaveLen(2))
	Expect(h.Notices()).To(Equal([]string{"Unable to toggle a todo", "Unable to toggle a todo"}))

	snapshot := h.session.Store().Snapshot()
	Expect(completedOf(snapshot.Todos)).To(Equal([]bool{true, false, true, false}))
	Expect(snapshot.CompletedCount).To(Equal(2))
	Expect(snapshot.ActiveCount).To(Equal(2))
}

func (s *BatchTestSuite) TestToggleAll_MergesAsCallsSettle() {
	todos := factory.Todos(userID, 0, 3)
	h := newHarness(time.Minute, todos...)
	release := h.remote.Hold(todos[2].ID)

	done := make(chan error, 1)
	go func() {
		_, err := h.session.ToggleAll(ctx)
		done <- err
	}()

	Eventually(func() int { return h.session.Store().Snapshot().CompletedCount }).Should(Equal(2))

	Expect(h.session.Batch().Busy()).To(BeTrue())
	Expect(h.session.View().InputDisabled).To(BeTrue())

	_, err := h.session.ToggleAll(ctx)
	Expect(err).To(MatchError(domain.ErrBusy))
	_, err = h.session.Add(ctx, "new one")
	Expect(err).To(MatchError(domain.ErrBusy))

	release()
	Eventually(done).Should(Receive(BeNil()))

	Expect(h.session.Store().Snapshot().CompletedCount).To(Equal(3))
	Expect(h.session.Batch().Busy()).To(BeFalse())
	Expect(h.remote.Calls(test.OpUpdate)).To(HaveLen(3))
	Expect(h.remote.Calls(test.OpCreate)).To(BeEmpty())
}

func (s *BatchTestSuite) TestToggleAll_SkipsRecordsInFlight() {
	todos := factory.Todos(userID, 0, 2)
	h := newHarness(time.Minute, todos...)
	release := h.remote.Hold(todos[0].ID)

	done := make(chan error, 1)
	go func() { done <- h.session.Editor().Delete(ctx, todos[0].ID) }()
	Eventually(func() bool { return h.session.Editor().State(todos[0].ID).Busy }).Should(BeTrue())

	result, err := h.session.ToggleAll(ctx)

	Expect(err).To(BeNil())
	Expect(result.Skipped).To(Equal([]int{todos[0].ID}))
	Expect(ids(result.Succeeded)).To(Equal([]int{todos[1].ID}))

	release()
	Eventually(done).Should(Receive(BeNil()))
	Expect(ids(h.Todos())).To(Equal([]int{todos[1].ID}))
}

func (s *BatchTestSuite) TestClearCompleted_OneFailureStays() {
	a := factory.Todo(userID, true)
	b := factory.Todo(userID, true)
	c := factory.Todo(userID, false)
	h := newHarness(time.Minute, a, b, c)
	h.remote.FailOn(test.OpDelete, b.ID)

	result, err := h.session.ClearCompleted(ctx)

	Expect(err).To(HaveOccurred())
	kind, ok := domain.KindOf(err)
	Expect(ok).To(BeTrue())
	Expect(kind).To(Equal(domain.DeleteError))

	Expect(result.Failed).To(Equal([]int{b.ID}))
	Expect(ids(result.Succeeded)).To(Equal([]int{a.ID}))
	Expect(ids(h.Todos())).To(Equal([]int{b.ID, c.ID}))
	Expect(h.Notices()).To(Equal([]string{"Unable to delete a todo"}))

	snapshot := h.session.Store().Snapshot()
	Expect(snapshot.CompletedCount).To(Equal(1))
	Expect(snapshot.ActiveCount).To(Equal(1))
	Expect(h.session.Batch().Clearing()).To(BeFalse())
}

func (s *BatchTestSuite) TestClearCompleted_NothingCompleted() {
	h := newHarness(time.Minute, factory.Todos(userID, 0, 2)...)

	result, err := h.session.ClearCompleted(ctx)

	Expect(err).To(BeNil())
	Expect(result.Dispatched()).To(Equal(0))
	Expect(h.remote.Calls("")).To(BeEmpty())
}

func (s *BatchTestSuite) TestClearCompleted_DisabledWhileInFlight() {
	todos := factory.Todos(userID, 2, 1)
	h := newHarness(time.Minute, todos...)
	release := h.remote.Hold(todos[0].ID)

	done := make(chan error, 1)
	go func() {
		_, err := h.session.ClearCompleted(ctx)
		done <- err
	}()

	Eventually(func() int { return h.session.Store().Snapshot().Total() }).Should(Equal(2))
	Expect(h.session.Batch().Clearing()).To(BeTrue())
	Expect(h.session.View().ClearCompletedEnabled).To(BeFalse())

	_, err := h.session.ClearCompleted(ctx)
	Expect(err).To(MatchError(domain.ErrBusy))

	release()
	Eventually(done).Should(Receive(BeNil()))
	Expect(ids(h.Todos())).To(Equal([]int{todos[2].ID}))
	Expect(h.remote.Calls(test.OpDelete)).To(HaveLen(2))
}
