// Copyright 2016 CoreOS, Inc
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stop

import (
	"testing"
	"time"
)

func TestAlreadyDoneIsClosed(t *testing.T) {
	select {
	case <-AlreadyDone:
	default:
		t.Fatal("AlreadyDone should already be closed")
	}
}

type fakeStoppable struct {
	stopped chan struct{}
}

func newFakeStoppable() *fakeStoppable {
	return &fakeStoppable{stopped: make(chan struct{})}
}

func (f *fakeStoppable) Stop() <-chan struct{} {
	close(f.stopped)
	return AlreadyDone
}

func TestGroupStopCallsEveryMember(t *testing.T) {
	g := NewGroup()
	a := newFakeStoppable()
	b := newFakeStoppable()
	g.Add(a)
	g.Add(b)

	select {
	case <-g.Stop():
	case <-time.After(time.Second):
		t.Fatal("Group.Stop() never completed")
	}

	select {
	case <-a.stopped:
	default:
		t.Fatal("first Stoppable was never stopped")
	}
	select {
	case <-b.stopped:
	default:
		t.Fatal("second Stoppable was never stopped")
	}
}

func TestGroupStopWaitsForSlowMembers(t *testing.T) {
	g := NewGroup()
	release := make(chan struct{})
	done := make(chan struct{})
	g.AddFunc(func() <-chan struct{} {
		go func() {
			<-release
			close(done)
		}()
		return done
	})

	stopped := g.Stop()
	select {
	case <-stopped:
		t.Fatal("Group.Stop() returned before the slow member finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Group.Stop() never completed after release")
	}
}

func TestGroupStopOnEmptyGroupCompletesImmediately(t *testing.T) {
	g := NewGroup()
	select {
	case <-g.Stop():
	case <-time.After(time.Second):
		t.Fatal("Stop on an empty Group should complete immediately")
	}
}

func TestGroupStopClearsMembersForReuse(t *testing.T) {
	g := NewGroup()
	a := newFakeStoppable()
	g.Add(a)
	<-g.Stop()

	// A second Stop with no members added since should complete
	// immediately, since the first Stop cleared the group's list.
	select {
	case <-g.Stop():
	case <-time.After(time.Second):
		t.Fatal("second Stop() on a drained Group should complete immediately")
	}
}
