package telemetry

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wfunc/car-dash/internal/errors"
)

// DefaultTemperature 记录中缺少温度字段时使用的温度
const DefaultTemperature = 20

// Reading 一条解析后的读数
type Reading struct {
	RPM         int  `json:"rpm"`
	Locked      bool `json:"locked"`
	Temperature int  `json:"temperature"`
}

// Parse 解析一行 "<rpm>,<door_flag>[,<temperature>]"
//
// 车门标志为 1 表示解锁，其余取值均为上锁。任何字段解析失败时整条记录作废，
// 返回 ErrMalformedRecord，不会返回部分结果。
func Parse(line string) (Reading, error) {
	if !utf8.ValidString(line) {
		return Reading{}, errors.New(errors.ErrMalformedRecord, "invalid utf-8")
	}

	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) < 2 {
		return Reading{}, errors.Newf(errors.ErrMalformedRecord, "expected at least 2 fields, got %d", len(fields))
	}

	rpm, err := parseField(fields, 0, "rpm")
	if err != nil {
		return Reading{}, err
	}
	door, err := parseField(fields, 1, "door")
	if err != nil {
		return Reading{}, err
	}

	temp := DefaultTemperature
	if len(fields) > 2 {
		if temp, err = parseField(fields, 2, "temperature"); err != nil {
			return Reading{}, err
		}
	}

	return Reading{
		RPM:         rpm,
		Locked:      door != 1,
		Temperature: temp,
	}, nil
}

func parseField(fields []string, i int, name string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(fields[i]))
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrMalformedRecord, "field %d (%s): %q", i, name, fields[i])
	}
	return v, nil
}

// Format 把读数编码为一行（不含换行符），与 Parse 互逆
func (r Reading) Format() string {
	door := 1
	if r.Locked {
		door = 0
	}
	return strconv.Itoa(r.RPM) + "," + strconv.Itoa(door) + "," + strconv.Itoa(r.Temperature)
}
