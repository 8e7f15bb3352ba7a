package service_test

import (
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/service"
	"todoclient/pkg/test/factory"
)

const userID = 42

type StoreTestSuite struct {
	suite.Suite
	Store *service.Store
}

func (s *StoreTestSuite) SetupTest() {
	s.Store = service.NewStore()
}

func TestStoreTestSuite(t *testing.T) {
	RegisterTestingT(t)

	suite.Run(t, new(StoreTestSuite))
}

func expectCountsConsistent(snapshot service.Snapshot) {
	active, completed := service.Counts(snapshot.Todos)

	Expect(snapshot.ActiveCount).To(Equal(active))
	Expect(snapshot.CompletedCount).To(Equal(completed))
	Expect(snapshot.ActiveCount + snapshot.CompletedCount).To(Equal(snapshot.Total()))
}

func (s *StoreTestSuite) TestReplaceAll_DropsUnsavedAndDuplicates() {
	a := factory.Todo(userID, false)
	b := factory.Todo(userID, true)

	s.Store.ReplaceAll([]domain.Todo{a, {ID: 0, Title: "temp"}, b, a})

	snapshot := s.Store.Snapshot()
	Expect(snapshot.Todos).To(Equal([]domain.Todo{a, b}))
	Expect(snapshot.ActiveCount).To(Equal(1))
	Expect(snapshot.CompletedCount).To(Equal(1))
}

func (s *StoreTestSuite) TestReplaceAll_Empty() {
	s.Store.ReplaceAll(nil)

	snapshot := s.Store.Snapshot()
	Expect(snapshot.Todos).To(BeEmpty())
	Expect(snapshot.Todos).ToNot(BeNil())
	Expect(snapshot.Total()).To(Equal(0))
}

func (s *StoreTestSuite) TestAppend() {
	a := factory.Todo(userID, false)
	s.Store.Append(a)

	Expect(s.Store.Append(domain.Todo{ID: 0, Title: "pending"})).To(BeFalse())

	b := factory.Todo(userID, false)
	s.Store.Append(b)

	Expect(s.Store.Snapshot().Todos).To(Equal([]domain.Todo{a, b}))

	a.Title = "renamed"
	Expect(s.Store.Append(a)).To(BeTrue())
	Expect(s.Store.Snapshot().Todos).To(Equal([]domain.Todo{a, b}))
}

func (s *StoreTestSuite) TestPatch_MergesOnlySuppliedFields() {
	todo := factory.Todo(userID, true, map[string]any{"Title": "walk"})
	s.Store.ReplaceAll([]domain.Todo{todo})

	Expect(s.Store.Patch(domain.PatchTitle(todo.ID, "run"))).To(BeTrue())

	got, ok := s.Store.Get(todo.ID)
	Expect(ok).To(BeTrue())
	Expect(got.Title).To(Equal("run"))
	Expect(got.Completed).To(BeTrue())

	Expect(s.Store.Patch(domain.PatchCompleted(todo.ID, false))).To(BeTrue())

	got, _ = s.Store.Get(todo.ID)
	Expect(got.Title).To(Equal("run"))
	Expect(got.Completed).To(BeFalse())
}

func (s *StoreTestSuite) TestPatch_Idempotent() {
	todo := factory.Todo(userID, false)
	s.Store.ReplaceAll([]domain.Todo{todo, factory.Todo(userID, true)})

	confirmed := todo
	confirmed.Title = "confirmed"
	confirmed.Completed = true

	s.Store.Patch(domain.PatchFrom(confirmed))
	first := s.Store.Snapshot()

	Expect(s.Store.Patch(domain.PatchFrom(confirmed))).To(BeFalse())
	second := s.Store.Snapshot()

	Expect(second.Todos).To(Equal(first.Todos))
	Expect(second.Version).To(Equal(first.Version))
}

func (s *StoreTestSuite) TestPatch_UnknownID() {
	s.Store.ReplaceAll([]domain.Todo{factory.Todo(userID, false)})
	before := s.Store.Snapshot()

	Expect(s.Store.Patch(domain.PatchTitle(999999, "ghost"))).To(BeFalse())
	Expect(s.Store.Snapshot()).To(Equal(before))
}

func (s *StoreTestSuite) TestRemoveMany_RemovesOnlyTheSet() {
	todos := factory.Todos(userID, 3, 2)
	s.Store.ReplaceAll(todos)

	removed := s.Store.RemoveMany(map[int]struct{}{todos[0].ID: {}, todos[3].ID: {}})

	Expect(removed).To(Equal(2))
	Expect(s.Store.Snapshot().Todos).To(Equal([]domain.Todo{todos[1], todos[2], todos[4]}))

	Expect(s.Store.Remove(todos[1].ID)).To(BeTrue())
	Expect(s.Store.Remove(todos[1].ID)).To(BeFalse())
}

func (s *StoreTestSuite) TestToggleMany_ReplacesByID() {
	todos := factory.Todos(userID, 0, 3)
	s.Store.ReplaceAll(todos)

	flipped := todos[2]
	flipped.Completed = true

	Expect(s.Store.ToggleMany([]domain.Todo{flipped})).To(Equal(1))
	Expect(s.Store.ToggleMany([]domain.Todo{flipped})).To(Equal(0))

	snapshot := s.Store.Snapshot()
	Expect(snapshot.Todos[2].Completed).To(BeTrue())
	Expect(snapshot.Todos[0].Completed).To(BeFalse())
	Expect(snapshot.CompletedCount).To(Equal(1))
}

func (s *StoreTestSuite) TestCountsInvariant_AfterEveryMutation() {
	todos := factory.Todos(userID, 2, 3)

	s.Store.ReplaceAll(todos)
	expectCountsConsistent(s.Store.Snapshot())

	s.Store.Append(factory.Todo(userID, true))
	expectCountsConsistent(s.Store.Snapshot())

	s.Store.Patch(domain.PatchCompleted(todos[3].ID, true))
	expectCountsConsistent(s.Store.Snapshot())

	s.Store.Remove(todos[0].ID)
	expectCountsConsistent(s.Store.Snapshot())

	s.Store.RemoveMany(map[int]struct{}{todos[1].ID: {}, todos[2].ID: {}})
	expectCountsConsistent(s.Store.Snapshot())

	flipped := todos[4]
	flipped.Completed = true
	s.Store.ToggleMany([]domain.Todo{flipped})
	expectCountsConsistent(s.Store.Snapshot())

	Expect(s.Store.Snapshot().ActiveCount).To(Equal(0))
}

func (s *StoreTestSuite) TestSubscribe_SeesFreshCounts() {
	var seen []service.Snapshot
	cancel := s.Store.Subscribe(func(snapshot service.Snapshot) {
		seen = append(seen, snapshot)
	})

	todo := factory.Todo(userID, false)
	s.Store.Append(todo)
	s.Store.Patch(domain.PatchCompleted(todo.ID, true))

	Expect(seen).To(HaveLen(2))
	Expect(seen[0].ActiveCount).To(Equal(1))
	Expect(seen[1].CompletedCount).To(Equal(1))
	Expect(seen[1].Version).To(BeNumerically(">", seen[0].Version))

	cancel()
	s.Store.Remove(todo.ID)
	Expect(seen).To(HaveLen(2))
}

func (s *StoreTestSuite) TestSnapshot_IsACopy() {
	todo := factory.Todo(userID, false)
	s.Store.Append(todo)

	snapshot := s.Store.Snapshot()
	snapshot.Todos[0].Title = "mutated"

	got, _ := s.Store.Get(todo.ID)
	Expect(got.Title).To(Equal(todo.Title))
}
