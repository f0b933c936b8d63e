// Package telemetry provides [chefbot.Sink] implementations.
//
//   - [LogSink] writes every event as a zerolog line.
//   - [Langfuse] batches events to the Langfuse ingestion API from a background worker.
//   - [OTelSink] turns events into OpenTelemetry spans; [InitTracing] sets up the OTLP exporter.
//   - [Multi] fans one event out to several sinks.
//
// Sinks never report delivery failures to the emitting component. They log them and drop the
// event.
package telemetry
