// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// avrocodergen writes the init() code that declares a package's Avro coded
// record types, so pipelines can register them with avrocoder.RegisterPackage
// without scanning packages at runtime.
//
//	//go:generate go run github.com/erikogenvik/beam-avrocoder/cmd/avrocodergen gen .
package main

import (
	"log"

	"github.com/erikogenvik/beam-avrocoder/cmd/avrocodergen/cmd"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("avrocodergen: ")

	if err := cmd.Root.Execute(); err != nil {
		log.Fatal(err)
	}
}
