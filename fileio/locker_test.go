package fileio

import "testing"

func TestFileLockerSharedLocksStack(t *testing.T) {
	l := NewFileLocker()

	got, err := l.Acquire("a.txt", LockShared)
	if err != nil || !got {
		t.Fatalf("first shared Acquire = (%v,%v), want (true,nil)", got, err)
	}
	got, err = l.Acquire("a.txt", LockShared)
	if err != nil || got {
		t.Fatalf("second shared Acquire = (%v,%v), want (false,nil)", got, err)
	}

	l.Release("a.txt")
	// One shared holder remains; a fresh exclusive attempt must still fail.
	if _, err := l.Acquire("a.txt", LockExclusive); err == nil {
		t.Fatal("expected exclusive Acquire to fail while a shared holder remains")
	}

	l.Release("a.txt")
	got, err = l.Acquire("a.txt", LockExclusive)
	if err != nil || !got {
		t.Fatalf("exclusive Acquire after all shared holders released = (%v,%v), want (true,nil)", got, err)
	}
}

func TestFileLockerExclusiveBlocksEverything(t *testing.T) {
	l := NewFileLocker()

	if got, err := l.Acquire("b.txt", LockExclusive); err != nil || !got {
		t.Fatalf("exclusive Acquire = (%v,%v), want (true,nil)", got, err)
	}
	if _, err := l.Acquire("b.txt", LockShared); err == nil {
		t.Fatal("expected shared Acquire to fail against an existing exclusive holder")
	}
	if _, err := l.Acquire("b.txt", LockExclusive); err == nil {
		t.Fatal("expected a second exclusive Acquire to fail")
	}

	l.Release("b.txt")
	if got, err := l.Acquire("b.txt", LockShared); err != nil || !got {
		t.Fatalf("shared Acquire after exclusive release = (%v,%v), want (true,nil)", got, err)
	}
}

func TestFileLockerNoneAlwaysSucceeds(t *testing.T) {
	l := NewFileLocker()
	if _, err := l.Acquire("c.txt", LockExclusive); err != nil {
		t.Fatalf("Acquire exclusive: %v", err)
	}
	got, err := l.Acquire("c.txt", LockNone)
	if err != nil || !got {
		t.Fatalf("LockNone Acquire = (%v,%v), want (true,nil) regardless of existing holders", got, err)
	}
}

func TestFileLockerReleaseOfUnheldPathIsNoop(t *testing.T) {
	l := NewFileLocker()
	l.Release("never-locked.txt") // must not panic
}
