// Package mocks provides test doubles for the source client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	model "github.com/sells-group/netusage/internal/model"
	source "github.com/sells-group/netusage/internal/source"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Totals provides a mock function with given fields: ctx, p
func (_m *MockClient) Totals(ctx context.Context, p model.Period) (*source.TotalsReport, error) {
	ret := _m.Called(ctx, p)

	if len(ret) == 0 {
		panic("no return value specified for Totals")
	}

	var r0 *source.TotalsReport
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, model.Period) (*source.TotalsReport, error)); ok {
		return rf(ctx, p)
	}
	if rf, ok := ret.Get(0).(func(context.Context, model.Period) *source.TotalsReport); ok {
		r0 = rf(ctx, p)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*source.TotalsReport)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, model.Period) error); ok {
		r1 = rf(ctx, p)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Rankings provides a mock function with given fields: ctx, p
func (_m *MockClient) Rankings(ctx context.Context, p model.Period) (*source.RankingReport, error) {
	ret := _m.Called(ctx, p)

	if len(ret) == 0 {
		panic("no return value specified for Rankings")
	}

	var r0 *source.RankingReport
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, model.Period) (*source.RankingReport, error)); ok {
		return rf(ctx, p)
	}
	if rf, ok := ret.Get(0).(func(context.Context, model.Period) *source.RankingReport); ok {
		r0 = rf(ctx, p)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*source.RankingReport)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, model.Period) error); ok {
		r1 = rf(ctx, p)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Signals provides a mock function with given fields: ctx, p
func (_m *MockClient) Signals(ctx context.Context, p model.Period) (*source.SignalReport, error) {
	ret := _m.Called(ctx, p)

	if len(ret) == 0 {
		panic("no return value specified for Signals")
	}

	var r0 *source.SignalReport
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, model.Period) (*source.SignalReport, error)); ok {
		return rf(ctx, p)
	}
	if rf, ok := ret.Get(0).(func(context.Context, model.Period) *source.SignalReport); ok {
		r0 = rf(ctx, p)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*source.SignalReport)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, model.Period) error); ok {
		r1 = rf(ctx, p)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Counts provides a mock function with given fields: ctx, p
func (_m *MockClient) Counts(ctx context.Context, p model.Period) (*source.CountReport, error) {
	ret := _m.Called(ctx, p)

	if len(ret) == 0 {
		panic("no return value specified for Counts")
	}

	var r0 *source.CountReport
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, model.Period) (*source.CountReport, error)); ok {
		return rf(ctx, p)
	}
	if rf, ok := ret.Get(0).(func(context.Context, model.Period) *source.CountReport); ok {
		r0 = rf(ctx, p)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*source.CountReport)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, model.Period) error); ok {
		r1 = rf(ctx, p)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Antenna provides a mock function with given fields: ctx, id
func (_m *MockClient) Antenna(ctx context.Context, id int64) (*source.AntennaDescriptor, error) {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for Antenna")
	}

	var r0 *source.AntennaDescriptor
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, int64) (*source.AntennaDescriptor, error)); ok {
		return rf(ctx, id)
	}
	if rf, ok := ret.Get(0).(func(context.Context, int64) *source.AntennaDescriptor); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*source.AntennaDescriptor)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, int64) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
