package builtins

import (
	"math"
	"time"

	"jscore/pkg/vm"
)

// maxTimeValue bounds time values to ±100,000,000 days around the epoch.
const maxTimeValue = 8.64e15

// dateLayouts are the string forms Date.parse accepts, tried in order.
var dateLayouts = []string{
	"2006-01-02T15:04:05.000Z07:00",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
	time.RFC1123,
	time.RFC1123Z,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

type DateInitializer struct{}

func (d *DateInitializer) Name() string {
	return "Date"
}

func (d *DateInitializer) Priority() int {
	return PriorityDate
}

func (d *DateInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	b := NewConstructorBuilderWithStandardObject(realm, dateConstructor, realm.StandardObjects().Date).
		Name("Date").
		Length(7).
		Method(dateGetTime, "getTime", 0).
		Method(dateGetTime, "valueOf", 0).
		Method(dateToISOString, "toISOString", 0).
		Method(dateToJSON, "toJSON", 1).
		Method(dateToString, "toString", 0).
		StaticMethod(dateNow, "now", 0).
		StaticMethod(dateParse, "parse", 1).
		StaticMethod(dateUTC, "UTC", 7)

	getters := []struct {
		name string
		fn   func(t time.Time) int
	}{
		{"getFullYear", time.Time.Year},
		{"getMonth", func(t time.Time) int { return int(t.Month()) - 1 }},
		{"getDate", time.Time.Day},
		{"getDay", func(t time.Time) int { return int(t.Weekday()) }},
		{"getHours", time.Time.Hour},
		{"getMinutes", time.Time.Minute},
		{"getSeconds", time.Time.Second},
		{"getMilliseconds", func(t time.Time) int { return t.Nanosecond() / int(time.Millisecond) }},
	}
	for _, g := range getters {
		b.Method(dateComponent(g.name, g.fn, time.Local), g.name, 0)
		utcName := "getUTC" + g.name[len("get"):]
		b.Method(dateComponent(utcName, g.fn, time.UTC), utcName, 0)
	}

	return "Date", vm.ObjectValue(b.Build()), vm.DefaultAttribute
}

// timeClip truncates to whole milliseconds and rejects out-of-range values.
func timeClip(t float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) || math.Abs(t) > maxTimeValue {
		return math.NaN()
	}
	return math.Trunc(t) + 0 // +0 turns -0 into +0
}

func nowMillis() float64 {
	return float64(time.Now().UnixMilli())
}

func millisToTime(ms float64, loc *time.Location) time.Time {
	return time.UnixMilli(int64(ms)).In(loc)
}

// dateConstructor returns a string when called and fills in the receiver's
// time value when constructed.
func dateConstructor(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	if !realm.IsConstructCall() {
		return vm.StringValue(formatDate(nowMillis())), nil
	}

	var tv float64
	switch len(args) {
	case 0:
		tv = nowMillis()
	case 1:
		arg := args[0]
		if arg.IsObject() && arg.AsObject().Kind() == vm.KindDate {
			var ok bool
			arg.AsObject().Borrow(func(o *vm.Object) { tv, ok = o.AsDate() })
			if !ok {
				tv = math.NaN()
			}
			break
		}
		prim, err := realm.ToPrimitive(arg, vm.HintDefault)
		if err != nil {
			return vm.Undefined, err
		}
		if prim.IsString() {
			tv = parseDate(prim.AsString())
		} else if tv, err = realm.ToNumber(prim); err != nil {
			return vm.Undefined, err
		}
	default:
		var err error
		if tv, err = dateFromComponents(realm, args, time.Local); err != nil {
			return vm.Undefined, err
		}
	}

	this.AsObject().SetData(&vm.DateData{Time: timeClip(tv)})
	return this, nil
}

// dateFromComponents builds a time value from year, month[, day, hours,
// minutes, seconds, ms]. Two-digit years map to 1900-1999.
func dateFromComponents(realm *vm.Realm, args []vm.Value, loc *time.Location) (float64, error) {
	fields := [7]float64{0, 0, 1, 0, 0, 0, 0}
	for i := 0; i < len(fields) && i < len(args); i++ {
		n, err := realm.ToNumber(args[i])
		if err != nil {
			return 0, err
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return math.NaN(), nil
		}
		fields[i] = math.Trunc(n)
	}
	year := fields[0]
	if year >= 0 && year <= 99 {
		year += 1900
	}
	t := time.Date(int(year), time.Month(int(fields[1])+1), int(fields[2]),
		int(fields[3]), int(fields[4]), int(fields[5]), int(fields[6])*int(time.Millisecond), loc)
	return float64(t.UnixMilli()), nil
}

func parseDate(s string) float64 {
	for _, layout := range dateLayouts {
		loc := time.UTC
		// date-time forms without an offset are local time
		if layout == "2006-01-02T15:04:05" || layout == "2006-01-02T15:04" {
			loc = time.Local
		}
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return float64(t.UnixMilli())
		}
	}
	return math.NaN()
}

func formatDate(ms float64) string {
	if math.IsNaN(ms) {
		return "Invalid Date"
	}
	return millisToTime(ms, time.Local).Format("Mon Jan 02 2006 15:04:05 GMT-0700 (MST)")
}

func thisTimeValue(realm *vm.Realm, this vm.Value, method string) (float64, error) {
	if this.IsObject() {
		var tv float64
		var ok bool
		this.AsObject().Borrow(func(o *vm.Object) { tv, ok = o.AsDate() })
		if ok {
			return tv, nil
		}
	}
	return 0, realm.ThrowTypeError("Date.prototype.%s called on incompatible receiver", method)
}

func dateGetTime(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	tv, err := thisTimeValue(realm, this, "getTime")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.NumberValue(tv), nil
}

func dateComponent(method string, fn func(time.Time) int, loc *time.Location) vm.NativeFunction {
	return func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
		tv, err := thisTimeValue(realm, this, method)
		if err != nil {
			return vm.Undefined, err
		}
		if math.IsNaN(tv) {
			return vm.NaN, nil
		}
		return vm.IntegerValue(fn(millisToTime(tv, loc))), nil
	}
}

func dateToISOString(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	tv, err := thisTimeValue(realm, this, "toISOString")
	if err != nil {
		return vm.Undefined, err
	}
	if math.IsNaN(tv) {
		return vm.Undefined, realm.ThrowRangeError("Invalid time value")
	}
	return vm.StringValue(millisToTime(tv, time.UTC).Format("2006-01-02T15:04:05.000Z")), nil
}

func dateToJSON(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	tv, err := realm.ToPrimitive(this, vm.HintNumber)
	if err != nil {
		return vm.Undefined, err
	}
	if tv.IsNumber() && (math.IsNaN(tv.AsFloat()) || math.IsInf(tv.AsFloat(), 0)) {
		return vm.Null, nil
	}
	fn, err := realm.GetV(this, "toISOString")
	if err != nil {
		return vm.Undefined, err
	}
	return realm.Call(fn, this, nil)
}

func dateToString(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	tv, err := thisTimeValue(realm, this, "toString")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.StringValue(formatDate(tv)), nil
}

func dateNow(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	return vm.NumberValue(nowMillis()), nil
}

func dateParse(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, err := realm.ToString(vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	return vm.NumberValue(timeClip(parseDate(s))), nil
}

func dateUTC(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	if len(args) == 0 {
		return vm.NaN, nil
	}
	tv, err := dateFromComponents(realm, args, time.UTC)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.NumberValue(timeClip(tv)), nil
}
