package main

import "testing"

func TestAnswerStrategy(t *testing.T) {
	for _, name := range []string{"yes", "no"} {
		pick, err := answerStrategy(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got := pick(); got != name {
			t.Fatalf("%s: picked %q", name, got)
		}
	}

	silent, err := answerStrategy("silent")
	if err != nil || silent() != "" {
		t.Fatalf("silent strategy answered")
	}

	random, err := answerStrategy("random")
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	for i := 0; i < 20; i++ {
		if got := random(); got != "yes" && got != "no" {
			t.Fatalf("random picked %q", got)
		}
	}

	if _, err := answerStrategy("coinflip"); err == nil {
		t.Fatalf("expected unknown strategy error")
	}
}
