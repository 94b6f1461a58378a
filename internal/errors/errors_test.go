package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

// 测试创建新错误
func (suite *ErrorsTestSuite) TestNew() {
	err := New(ErrMalformedRecord)
	suite.Equal(ErrMalformedRecord, err.Code)
	suite.Equal("数据记录格式错误", err.Message)
	suite.Empty(err.Details)
	suite.NotEmpty(err.Stack)

	err = New(ErrSerialPortOpen, "COM4", "baud 115200")
	suite.Equal("COM4; baud 115200", err.Details)

	// 未知错误码退回到通用消息
	err = New(ErrorCode(9999))
	suite.Equal("未知错误", err.Message)
}

// 测试格式化错误
func (suite *ErrorsTestSuite) TestNewf() {
	err := Newf(ErrMalformedRecord, "expected %d fields, got %d", 2, 1)
	suite.Equal("expected 2 fields, got 1", err.Details)
	suite.Equal("[3008] 数据记录格式错误: expected 2 fields, got 1", err.Error())
}

// 测试错误包装
func (suite *ErrorsTestSuite) TestWrap() {
	cause := errors.New("no such file or directory")
	wrapped := Wrap(cause, ErrSerialPortOpen)
	suite.Equal(ErrSerialPortOpen, wrapped.Code)
	suite.Equal(cause.Error(), wrapped.Details)
	suite.Equal(cause, wrapped.Unwrap())
	suite.True(errors.Is(wrapped, cause))

	suite.Nil(Wrap(nil, ErrUnknown))

	// 包装已有的AppError保留原始错误码
	inner := New(ErrMalformedRecord, "rpm")
	outer := Wrap(inner, ErrUnknown, "line 3")
	suite.Equal(ErrMalformedRecord, outer.Code)
	suite.Equal("line 3; rpm", outer.Details)
}

// 测试Wrapf
func (suite *ErrorsTestSuite) TestWrapf() {
	cause := errors.New("permission denied")
	wrapped := Wrapf(cause, ErrSerialPortOpen, "open %s", "/dev/ttyUSB0")
	suite.Equal("open /dev/ttyUSB0", wrapped.Details)
	suite.Equal(cause, wrapped.Cause)
}

// 测试错误码判断
func (suite *ErrorsTestSuite) TestIsAndGetCode() {
	err := New(ErrMalformedRecord)
	suite.True(Is(err, ErrMalformedRecord))
	suite.False(Is(err, ErrSerialPortOpen))
	suite.False(Is(nil, ErrMalformedRecord))

	// fmt包装后仍可识别
	chained := fmt.Errorf("tick: %w", err)
	suite.True(Is(chained, ErrMalformedRecord))
	suite.Equal(ErrMalformedRecord, GetCode(chained))

	suite.Equal(ErrUnknown, GetCode(errors.New("plain")))
	suite.Equal(ErrorCode(0), GetCode(nil))
}

// 测试错误分类
func (suite *ErrorsTestSuite) TestClassification() {
	suite.True(IsCritical(New(ErrSerialPortOpen)))
	suite.True(IsCritical(New(ErrConfigValidate)))
	suite.False(IsCritical(New(ErrMalformedRecord)))
	suite.False(IsCritical(nil))

	suite.True(IsDiscardable(New(ErrMalformedRecord)))
	suite.False(IsDiscardable(New(ErrSerialPortRead)))
}

// 测试HTTP状态码映射
func (suite *ErrorsTestSuite) TestHTTPStatus() {
	testCases := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrInvalidParam, http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{ErrTimeout, http.StatusRequestTimeout},
		{ErrDeviceOffline, http.StatusServiceUnavailable},
		{ErrDatabaseQuery, http.StatusServiceUnavailable},
		{ErrUnknown, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		suite.Equal(tc.expected, New(tc.code).HTTPStatus(), "错误码 %d", tc.code)
	}
}

// 测试WithDetails和WithCause
func (suite *ErrorsTestSuite) TestWithDetailsAndCause() {
	err := New(ErrDatabaseInsert).WithDetails("readings")
	suite.Equal("readings", err.Details)

	cause := errors.New("disk full")
	err = New(ErrDatabaseInsert).WithCause(cause)
	suite.Equal("disk full", err.Details)

	err = New(ErrDatabaseInsert, "readings").WithCause(cause)
	suite.Equal("readings", err.Details)
}

// 测试错误响应
func (suite *ErrorsTestSuite) TestErrorResponse() {
	resp := NewErrorResponse(New(ErrNotFound))
	suite.False(resp.Success)
	suite.Equal(ErrNotFound, resp.Error.Code)
	suite.NotZero(resp.Timestamp)
}

func TestErrorsTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
