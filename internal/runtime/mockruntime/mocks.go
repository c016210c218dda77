// Hand-written in MockGen's output style (not generated); see the package comment.
// Source: github.com/orizon-lang/rcimmix/internal/runtime (interfaces: RootScanner,LargeObjectSpace)

// Package mockruntime hand-authors the shape mockgen would produce for
// runtime.RootScanner and runtime.LargeObjectSpace, the two external
// collaborator interfaces the heap core calls out to. Kept hand-written
// (rather than generated, since this module never runs `go generate` or
// mockgen) but following go.uber.org/mock's generated-code conventions
// exactly, so swapping in the real generator later is a no-op.
package mockruntime

import (
	reflect "reflect"

	runtime "github.com/orizon-lang/rcimmix/internal/runtime"
	gomock "go.uber.org/mock/gomock"
)

// MockRootScanner is a mock of the RootScanner interface.
type MockRootScanner struct {
	ctrl     *gomock.Controller
	recorder *MockRootScannerMockRecorder
}

// MockRootScannerMockRecorder is the mock recorder for MockRootScanner.
type MockRootScannerMockRecorder struct {
	mock *MockRootScanner
}

// NewMockRootScanner creates a new mock instance.
func NewMockRootScanner(ctrl *gomock.Controller) *MockRootScanner {
	mock := &MockRootScanner{ctrl: ctrl}
	mock.recorder = &MockRootScannerMockRecorder{mock}

	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockRootScanner) EXPECT() *MockRootScannerMockRecorder {
	return m.recorder
}

// EnumerateRoots mocks base method.
func (m *MockRootScanner) EnumerateRoots(space *runtime.ImmixSpace) []runtime.Object {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "EnumerateRoots", space)
	ret0, _ := ret[0].([]runtime.Object)

	return ret0
}

// EnumerateRoots indicates an expected call of EnumerateRoots.
func (mr *MockRootScannerMockRecorder) EnumerateRoots(space interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EnumerateRoots",
		reflect.TypeOf((*MockRootScanner)(nil).EnumerateRoots), space)
}

// MockLargeObjectSpace is a mock of the LargeObjectSpace interface.
type MockLargeObjectSpace struct {
	ctrl     *gomock.Controller
	recorder *MockLargeObjectSpaceMockRecorder
}

// MockLargeObjectSpaceMockRecorder is the mock recorder for MockLargeObjectSpace.
type MockLargeObjectSpaceMockRecorder struct {
	mock *MockLargeObjectSpace
}

// NewMockLargeObjectSpace creates a new mock instance.
func NewMockLargeObjectSpace(ctrl *gomock.Controller) *MockLargeObjectSpace {
	mock := &MockLargeObjectSpace{ctrl: ctrl}
	mock.recorder = &MockLargeObjectSpaceMockRecorder{mock}

	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockLargeObjectSpace) EXPECT() *MockLargeObjectSpaceMockRecorder {
	return m.recorder
}

// GetNewObjects mocks base method.
func (m *MockLargeObjectSpace) GetNewObjects() []runtime.Object {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "GetNewObjects")
	ret0, _ := ret[0].([]runtime.Object)

	return ret0
}

// GetNewObjects indicates an expected call of GetNewObjects.
func (mr *MockLargeObjectSpaceMockRecorder) GetNewObjects() *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetNewObjects",
		reflect.TypeOf((*MockLargeObjectSpace)(nil).GetNewObjects))
}

// IsGCObject mocks base method.
func (m *MockLargeObjectSpace) IsGCObject(o runtime.Object) bool {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "IsGCObject", o)
	ret0, _ := ret[0].(bool)

	return ret0
}

// IsGCObject indicates an expected call of IsGCObject.
func (mr *MockLargeObjectSpaceMockRecorder) IsGCObject(o interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "IsGCObject",
		reflect.TypeOf((*MockLargeObjectSpace)(nil).IsGCObject), o)
}

// EnqueueFree mocks base method.
func (m *MockLargeObjectSpace) EnqueueFree(o runtime.Object) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "EnqueueFree", o)
}

// EnqueueFree indicates an expected call of EnqueueFree.
func (mr *MockLargeObjectSpaceMockRecorder) EnqueueFree(o interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EnqueueFree",
		reflect.TypeOf((*MockLargeObjectSpace)(nil).EnqueueFree), o)
}
