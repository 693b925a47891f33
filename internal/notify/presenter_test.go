package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/warpdl/warpalarm/internal/alarm"
)

var at = time.Date(2026, 3, 1, 7, 5, 0, 0, time.UTC)

func TestBuild(t *testing.T) {
	a := alarm.Alarm{ID: 7, Body: "2 tablets", Type: alarm.TypeMedicine, TriggerAt: alarm.Millis(at)}
	spec := Build(a, at)
	if spec.Slot != Slot {
		t.Fatalf("slot = %d, want %d", spec.Slot, Slot)
	}
	if spec.Title != "💊 Medicine Reminder" {
		t.Errorf("title = %q", spec.Title)
	}
	if spec.Body != "07:05 AM • 2 tablets" {
		t.Errorf("body = %q", spec.Body)
	}
	if len(spec.Actions) != 2 {
		t.Fatalf("actions = %d, want 2", len(spec.Actions))
	}
	if spec.Actions[0].Key != ActionDismiss || spec.Actions[0].TargetID != 1007 {
		t.Errorf("dismiss action = %+v", spec.Actions[0])
	}
	if spec.Actions[1].Key != ActionSnooze || spec.Actions[1].TargetID != 2007 {
		t.Errorf("snooze action = %+v", spec.Actions[1])
	}
	if spec.OpenTarget != 7 {
		t.Errorf("open target = %d, want 7", spec.OpenTarget)
	}
	if !spec.ShowOverLock || !spec.Ongoing || !spec.Critical || spec.Emergency {
		t.Errorf("flags = %+v", spec)
	}
	if spec.Channel != Channel {
		t.Errorf("channel = %q", spec.Channel)
	}
}

func TestBuild_GenericUsesTitleAndTimeOnlyBody(t *testing.T) {
	a := alarm.Alarm{ID: 1, Title: "Stand up", TriggerAt: alarm.Millis(at)}
	spec := Build(a, at.Add(13*time.Hour))
	if spec.Title != "Stand up" {
		t.Errorf("title = %q", spec.Title)
	}
	if spec.Body != "08:05 PM" {
		t.Errorf("body = %q", spec.Body)
	}
}

func TestBuild_IsPure(t *testing.T) {
	a := alarm.Alarm{ID: 3, Title: "x", Body: "y", Type: alarm.TypeMeeting, TriggerAt: 1}
	first := Build(a, at)
	second := Build(a, at)
	if first.Title != second.Title || first.Body != second.Body || len(first.Actions) != len(second.Actions) {
		t.Fatal("Build is not deterministic")
	}
}

func TestBuildFallback(t *testing.T) {
	a := alarm.Alarm{ID: 4, Title: "Call", Type: alarm.TypeMeeting, TriggerAt: 1}
	spec := BuildFallback(a, at)
	if !spec.Emergency || spec.Ongoing {
		t.Errorf("flags = %+v", spec)
	}
	if !strings.HasSuffix(spec.Body, DefaultBody) {
		t.Errorf("body = %q", spec.Body)
	}
	if len(spec.Actions) != 1 || spec.Actions[0].TargetID != 1004 {
		t.Errorf("actions = %+v", spec.Actions)
	}
}

func TestParseActionKey(t *testing.T) {
	tests := []struct {
		key     string
		name    string
		id      int
		wantErr bool
	}{
		{"dismiss:1007", ActionDismiss, 7, false},
		{"snooze:2007", ActionSnooze, 7, false},
		{"snooze:12007", ActionSnooze, 10007, false},
		{"open:7", ActionOpen, 7, false},
		{"default", "", 0, true},
		{"dismiss:abc", "", 0, true},
		{"explode:1", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			name, id, err := ParseActionKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if name != tt.name || id != tt.id {
				t.Errorf("got (%q, %d), want (%q, %d)", name, id, tt.name, tt.id)
			}
		})
	}
}

func TestActionKey_RoundTrip(t *testing.T) {
	for _, a := range Build(alarm.Alarm{ID: 42, TriggerAt: 1}, at).Actions {
		name, id, err := ParseActionKey(actionKey(a))
		if err != nil {
			t.Fatal(err)
		}
		if name != a.Key || id != 42 {
			t.Errorf("%s decoded to (%q, %d)", actionKey(a), name, id)
		}
	}
}
