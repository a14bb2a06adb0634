/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ble

import "strings"

// baseUUIDSuffix is the tail of the Bluetooth base UUID
// 0000xxxx-0000-1000-8000-00805F9B34FB.
const baseUUIDSuffix = "00001000800000805f9b34fb"

// NormalizeUUID maps a service or characteristic UUID to a canonical form:
// lower case, no separators, 16 and 32 bit short forms expanded to 128 bits.
func NormalizeUUID(uuid string) string {
	u := normalizeID(uuid)

	if !isHex(u) {
		return u
	}

	switch len(u) {
	case 4:
		return "0000" + u + baseUUIDSuffix
	case 8:
		return u + baseUUIDSuffix
	default:
		return u
	}
}

// SameUUID reports whether two UUIDs name the same attribute.
func SameUUID(a, b string) bool {
	return NormalizeUUID(a) == NormalizeUUID(b)
}

// normalizeID canonicalizes hardware identifiers, which platforms report as
// MAC addresses or UUIDs with inconsistent casing and separators.
func normalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))

	return strings.NewReplacer("-", "", ":", "").Replace(id)
}

func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}

	return s != ""
}
