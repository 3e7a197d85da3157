package resource

import (
	"testing"

	"github.com/cafebrew/cafe-runtime/collections"
	"github.com/cafebrew/cafe-runtime/heap"
	"github.com/cafebrew/cafe-runtime/native/sim"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

type dropCounter struct {
	drops int
}

func (d *dropCounter) Drop() { d.drops++ }

func TestTable_Basic(t *testing.T) {
	table := NewTable()

	h := table.Insert(1, "test")
	if h == 0 {
		t.Fatal("expected non-zero handle")
	}

	val, ok := table.Get(h)
	if !ok || val != "test" {
		t.Fatalf("Get: %v %v", val, ok)
	}

	if _, ok := table.GetTyped(h, 1); !ok {
		t.Fatal("GetTyped with correct type failed")
	}
	if _, ok := table.GetTyped(h, 2); ok {
		t.Fatal("GetTyped with wrong type should fail")
	}

	val, ok = table.Remove(h)
	if !ok || val != "test" {
		t.Fatalf("Remove: %v %v", val, ok)
	}
	if table.Len() != 0 {
		t.Fatal("expected Len() == 0 after Remove")
	}
	if _, ok := table.Get(h); ok {
		t.Fatal("stale handle resolved")
	}
}

func TestTable_InvalidHandle(t *testing.T) {
	table := NewTable()
	if _, ok := table.Get(0); ok {
		t.Fatal("handle 0 resolved")
	}
	if _, ok := table.Remove(42); ok {
		t.Fatal("unknown handle removed")
	}
}

func TestTable_HandleReuse(t *testing.T) {
	table := NewTable()
	h1 := table.Insert(1, "a")
	table.Remove(h1)
	h2 := table.Insert(1, "b")
	if h2 != h1 {
		t.Fatalf("expected handle reuse, got %d then %d", h1, h2)
	}
	if v, _ := table.Get(h2); v != "b" {
		t.Fatalf("reused handle resolves to %v", v)
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	h := table.Insert(1, "test")
	if len(obs.events) != 1 || obs.events[0].Type != EventCreated || obs.events[0].Handle != h {
		t.Fatalf("unexpected events after insert: %+v", obs.events)
	}

	table.Remove(h)
	if len(obs.events) != 2 || obs.events[1].Type != EventDropped {
		t.Fatalf("unexpected events after remove: %+v", obs.events)
	}

	table.Unsubscribe(obs)
	table.Insert(1, "quiet")
	if len(obs.events) != 2 {
		t.Fatal("unsubscribed observer still notified")
	}
}

func TestTable_DropperAndClose(t *testing.T) {
	table := NewTable()
	d1 := &dropCounter{}
	d2 := &dropCounter{}
	table.Insert(7, d1)
	table.Insert(7, d2)

	if err := table.Close(); err != nil {
		t.Fatal(err)
	}
	if d1.drops != 1 || d2.drops != 1 {
		t.Fatalf("destructors ran %d/%d times", d1.drops, d2.drops)
	}

	if h := table.Insert(1, "x"); h != 0 {
		t.Fatal("insert into closed table succeeded")
	}
	if err := table.Close(); err != nil {
		t.Fatal("second Close should be a no-op")
	}
}

func TestTable_Each(t *testing.T) {
	table := NewTable()
	for i := 0; i < 10; i++ {
		table.Insert(uint32(i%2), i)
	}
	count := 0
	table.Each(func(h Handle, typeID uint32, v any) bool {
		count++
		return true
	})
	if count != 10 {
		t.Fatalf("visited %d, want 10", count)
	}

	count = 0
	table.Each(func(Handle, uint32, any) bool {
		count++
		return count < 3
	})
	if count != 3 {
		t.Fatalf("early stop visited %d, want 3", count)
	}
}

func TestTable_HeapBacked(t *testing.T) {
	surface := sim.New(16 << 10)
	h := heap.New(surface, surface)
	free := surface.FreeBytes()

	table := NewTable(collections.WithBacking(h))
	var handles []Handle
	for i := 0; i < 100; i++ {
		hd := table.Insert(1, i)
		if hd == 0 {
			t.Fatalf("insert %d failed", i)
		}
		handles = append(handles, hd)
	}
	if table.Len() != 100 {
		t.Fatalf("len=%d", table.Len())
	}

	if err := table.Close(); err != nil {
		t.Fatal(err)
	}
	if surface.FreeBytes() != free {
		t.Fatal("table backing not released")
	}
}
