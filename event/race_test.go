// Copyright 2025 OpenPlate Software
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

package event

import (
	"sync"
	"testing"
)

// TestPublishUnsubscribeRace attempts to reproduce the race between Publish
// and Unsubscribe/Stop where a send could hit a concurrently closing
// channel. The implementation should never panic here.
func TestPublishUnsubscribeRace(t *testing.T) {
	const iters = 500
	for range iters {
		eb := NewEventBus(nil, nil)
		typ := EventType("race.test")

		subId, ch := eb.Subscribe(typ)

		var wg sync.WaitGroup
		wg.Add(3)

		go func() {
			defer wg.Done()
			for j := range 10 {
				eb.Publish(typ, NewEvent(typ, j))
			}
		}()

		go func() {
			defer wg.Done()
			eb.Unsubscribe(typ, subId)
			eb.Stop()
		}()

		go func() {
			defer wg.Done()
			for range ch {
			}
		}()

		wg.Wait()
		eb.Stop()
	}
}

func TestConcurrentSubscribePublish(t *testing.T) {
	eb := NewEventBus(nil, nil)
	typ := EventType("race.concurrent")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			subId, ch := eb.Subscribe(typ)
			go func() {
				for range ch {
				}
			}()
			eb.Unsubscribe(typ, subId)
		}()
		go func() {
			defer wg.Done()
			for j := range 20 {
				eb.Publish(typ, NewEvent(typ, j))
			}
		}()
	}
	wg.Wait()
	eb.Stop()
}
