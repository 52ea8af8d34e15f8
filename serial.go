// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import "code.hybscloud.com/atomix"

// Serial tells schedulers of one process apart in logs, metric labels and
// deadlock reports. Serials start at 1.
type Serial = uint32

// schedulers counts the schedulers created so far.
var schedulers atomix.Uint32

func nextSerial() Serial {
	return schedulers.Add(1)
}

// TaskID identifies a task within its scheduler.
// IDs start at 1 and are never reused by the same scheduler.
type TaskID uint32
